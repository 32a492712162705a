// genAnimal
// Predicts the genetic merit of offspring from their parents or ancestors
/*
Copyright 2021 Bruce Golden and Matt Spangler

Permission is hereby granted, free of charge, to any person obtaining a copy of
this software and associated documentation files (the "Software"), to deal in
the Software without restriction, including without limitation the rights to
use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
of the Software, and to permit persons to whom the Software is furnished to do
so, subject to the following conditions:
The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package animal

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blgolden/iGenDecModel/dairyPlan/metrics"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
)

var (
	ErrNoSireSelected  = errors.New("no sire selected")
	ErrNoTraitSelected = errors.New("no trait selected")
	ErrTooManySires    = errors.New("too many sires selected")
)

// Each parent transmits half its merit, discounted for the reliability of
// genomic evaluations
const GenomicFactor = 0.93

// Expected contribution of each pedigree tier.  They sum to 1.
const (
	SireWeight = 0.57
	MgsWeight  = 0.28
	MmgsWeight = 0.15
)

// MaxCohortSires is the most sires the cohort average accepts
const MaxCohortSires = 3

type Method int

const (
	DirectAverage      Method = iota // Genomic female x sire
	PedigreeRegression               // Sire, MGS, MMGS
	CohortAverage                    // Cohort mother mean x mean of sires
)

func (m Method) String() string {
	switch m {
	case DirectAverage:
		return "direct-average"
	case PedigreeRegression:
		return "pedigree-regression"
	case CohortAverage:
		return "cohort-average"
	default:
		return "unknown"
	}
}

func ParseMethod(s string) (Method, error) {
	for _, m := range []Method{DirectAverage, PedigreeRegression, CohortAverage} {
		if strings.EqualFold(strings.TrimSpace(s), m.String()) {
			return m, nil
		}
	}
	return DirectAverage, fmt.Errorf("unknown prediction method %q", s)
}

// MissingTraitPolicy decides what a missing evaluation contributes
type MissingTraitPolicy int

const (
	ZeroFill  MissingTraitPolicy = iota // Missing PTA counts as 0
	OmitTrait                           // Trait is left out of the result
)

// PredictionResult is one offspring's (or cohort's) predicted merit.  It is
// not modified after it is returned.
type PredictionResult struct {
	Id       uuid.UUID
	Method   Method
	FemaleId string // Dam for direct/pedigree, cohort name for cohort average
	SireIds  []string
	Values   PTA
}

// Predictor holds the choices that apply to every prediction
type Predictor struct {
	catalog  *traits.Catalog
	missing  MissingTraitPolicy
	resolver AncestorResolver
	workers  int
	logger   *zap.Logger
	metrics  *metrics.Collector
}

type Option func(*Predictor)

func WithMissingTraitPolicy(m MissingTraitPolicy) Option {
	return func(p *Predictor) { p.missing = m }
}

func WithResolver(r AncestorResolver) Option {
	return func(p *Predictor) { p.resolver = r }
}

// WithWorkers bounds the goroutines used by PedigreeBatch
func WithWorkers(n int) Option {
	return func(p *Predictor) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Predictor) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(p *Predictor) { p.metrics = c }
}

func NewPredictor(catalog *traits.Catalog, opts ...Option) *Predictor {
	p := &Predictor{
		catalog: catalog,
		missing: ZeroFill,
		workers: runtime.NumCPU(),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Predictor) Catalog() *traits.Catalog { return p.catalog }

// ValidateTraits fails with traits.ErrUnknownTrait on the first bad key
func (p *Predictor) ValidateTraits(keys []traits.Key) error {
	if len(keys) == 0 {
		return ErrNoTraitSelected
	}
	return p.catalog.Validate(keys...)
}

func (p *Predictor) value(pta PTA, k traits.Key) (float64, bool) {
	if v, ok := pta[k]; ok {
		return v, true
	}
	return 0, p.missing == ZeroFill
}

// Direct applies (dam + sire) / 2 * 0.93 trait by trait.  Keys must
// already be validated.
func (p *Predictor) Direct(dam, sire PTA, keys []traits.Key) PTA {
	out := make(PTA, len(keys))
	for _, k := range keys {
		d, okD := p.value(dam, k)
		s, okS := p.value(sire, k)
		if !okD || !okS {
			continue
		}
		out[k] = (d + s) / 2 * GenomicFactor
	}
	return out
}

// DirectAverage predicts the daughter of a genomic tested female and a sire
func (p *Predictor) DirectAverage(female FemaleRecord, sire *SireRecord, keys []traits.Key) (PredictionResult, error) {
	if err := p.ValidateTraits(keys); err != nil {
		return PredictionResult{}, err
	}
	if sire == nil {
		return PredictionResult{}, ErrNoSireSelected
	}
	return PredictionResult{
		Id:       uuid.New(),
		Method:   DirectAverage,
		FemaleId: female.Id,
		SireIds:  []string{sire.Id},
		Values:   p.Direct(female.PTA, sire.PTA, keys),
	}, nil
}

// Regress applies the fixed pedigree weights.  All three ancestors must be
// present.
func (p *Predictor) Regress(a AncestorSet, keys []traits.Key) (PTA, error) {
	if err := a.complete(); err != nil {
		return nil, err
	}
	out := make(PTA, len(keys))
	for _, k := range keys {
		s, ok1 := p.value(a.Sire.PTA, k)
		m, ok2 := p.value(a.Mgs.PTA, k)
		mm, ok3 := p.value(a.Mmgs.PTA, k)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		out[k] = s*SireWeight + m*MgsWeight + mm*MmgsWeight
	}
	return out, nil
}

// PedigreeRegression predicts a female without genomic results from her
// sire, maternal grandsire and maternal great grandsire
func (p *Predictor) PedigreeRegression(femaleId string, a AncestorSet, keys []traits.Key) (PredictionResult, error) {
	if err := p.ValidateTraits(keys); err != nil {
		return PredictionResult{}, err
	}
	v, err := p.Regress(a, keys)
	if err != nil {
		return PredictionResult{}, err
	}
	return PredictionResult{
		Id:       uuid.New(),
		Method:   PedigreeRegression,
		FemaleId: femaleId,
		SireIds:  []string{a.Sire.Id, a.Mgs.Id, a.Mmgs.Id},
		Values:   v,
	}, nil
}

// CohortAverage projects a whole cohort: (mother mean + mean of the
// selected sires) / 2 * 0.93.  The sire mean is unweighted.
func (p *Predictor) CohortAverage(c Cohort, motherMean PTA, sires []SireRecord, keys []traits.Key) (PredictionResult, error) {
	if err := p.ValidateTraits(keys); err != nil {
		return PredictionResult{}, err
	}
	if len(sires) == 0 {
		return PredictionResult{}, ErrNoSireSelected
	}
	if len(sires) > MaxCohortSires {
		return PredictionResult{}, fmt.Errorf("%w: %d, at most %d", ErrTooManySires, len(sires), MaxCohortSires)
	}

	sireMean := make(PTA, len(keys))
	ids := make([]string, 0, len(sires))
	for _, s := range sires {
		ids = append(ids, s.Id)
	}
	for _, k := range keys {
		var sum float64
		complete := true
		for _, s := range sires {
			v, ok := p.value(s.PTA, k)
			if !ok {
				complete = false
				break
			}
			sum += v
		}
		if complete {
			sireMean[k] = sum / float64(len(sires))
		}
	}

	// Traits dropped from the sire mean stay dropped under OmitTrait
	return PredictionResult{
		Id:       uuid.New(),
		Method:   CohortAverage,
		FemaleId: c.String(),
		SireIds:  ids,
		Values:   p.Direct(motherMean, sireMean, keys),
	}, nil
}
