// pedigree
// Ancestor lookup and batch pedigree prediction
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
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/remeh/sizedwaitgroup"
	"go.uber.org/zap"

	"github.com/blgolden/iGenDecModel/dairyPlan/metrics"
	"github.com/blgolden/iGenDecModel/dairyPlan/traits"
)

// ErrAncestorNotFound is wrapped by every AncestorNotFoundError
var ErrAncestorNotFound = errors.New("ancestor not found")

// Tier of an ancestor in the pedigree
type Tier int

const (
	SireTier Tier = iota
	MgsTier
	MmgsTier
)

func (t Tier) String() string {
	switch t {
	case SireTier:
		return "sire"
	case MgsTier:
		return "MGS"
	case MmgsTier:
		return "MMGS"
	default:
		return "unknown"
	}
}

// AncestorNotFoundError names the tier that could not be resolved
type AncestorNotFoundError struct {
	Tier Tier
	Code string // As given on the row, may be empty
}

func (e *AncestorNotFoundError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s missing", ErrAncestorNotFound, e.Tier)
	}
	return fmt.Sprintf("%s: %s %q", ErrAncestorNotFound, e.Tier, e.Code)
}

func (e *AncestorNotFoundError) Unwrap() error { return ErrAncestorNotFound }

// AncestorSet is the pedigree used by the regression.  A nil member is an
// unresolved ancestor.
type AncestorSet struct {
	Sire *SireRecord
	Mgs  *SireRecord
	Mmgs *SireRecord
}

func (a AncestorSet) complete() error {
	switch {
	case a.Sire == nil:
		return &AncestorNotFoundError{Tier: SireTier}
	case a.Mgs == nil:
		return &AncestorNotFoundError{Tier: MgsTier}
	case a.Mmgs == nil:
		return &AncestorNotFoundError{Tier: MmgsTier}
	}
	return nil
}

// AncestorResolver finds a sire by any of the codes he is known by
type AncestorResolver interface {
	Resolve(code string) (SireRecord, bool)
}

// Normalizer rewrites a sire code into a lookup form
type Normalizer func(string) string

// TrimUpper removes surrounding blanks and upper cases
func TrimUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// AlphaNumeric keeps only letters and digits, upper cased.  "011-HO-12345"
// and "011HO12345" meet here.
func AlphaNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// StudCode drops the leading zeros of a NAAB stud code so that "7HO12345",
// "007HO12345" and "007-HO-12345" are the same bull
func StudCode(s string) string {
	s = AlphaNumeric(s)
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

// DefaultNormalizers are tried in order after an exact match fails
var DefaultNormalizers = []Normalizer{TrimUpper, AlphaNumeric, StudCode}

// SireIndex resolves sire codes against an in-memory list of sires
type SireIndex struct {
	normalizers []Normalizer
	exact       map[string]int
	byForm      []map[string]int // one per normalizer
	sires       []SireRecord
}

// NewSireIndex indexes each sire by Id and Aliases under every normalizer.
// With no normalizers given DefaultNormalizers are used.  When two sires
// share a code the first one listed wins.
func NewSireIndex(sires []SireRecord, normalizers ...Normalizer) *SireIndex {
	if len(normalizers) == 0 {
		normalizers = DefaultNormalizers
	}
	idx := &SireIndex{
		normalizers: normalizers,
		exact:       make(map[string]int),
		byForm:      make([]map[string]int, len(normalizers)),
		sires:       sires,
	}
	for n := range normalizers {
		idx.byForm[n] = make(map[string]int)
	}
	for i, s := range sires {
		for _, code := range append([]string{s.Id}, s.Aliases...) {
			if code == "" {
				continue
			}
			if _, ok := idx.exact[code]; !ok {
				idx.exact[code] = i
			}
			for n, norm := range normalizers {
				k := norm(code)
				if k == "" {
					continue
				}
				if _, ok := idx.byForm[n][k]; !ok {
					idx.byForm[n][k] = i
				}
			}
		}
	}
	return idx
}

func (x *SireIndex) Resolve(code string) (SireRecord, bool) {
	if code == "" {
		return SireRecord{}, false
	}
	if i, ok := x.exact[code]; ok {
		return x.sires[i], true
	}
	for n, norm := range x.normalizers {
		if i, ok := x.byForm[n][norm(code)]; ok {
			return x.sires[i], true
		}
	}
	return SireRecord{}, false
}

// PedigreeRow is one female of an upload with her ancestor codes
type PedigreeRow struct {
	FemaleId string
	SireCode string
	MgsCode  string
	MmgsCode string
}

// RowStatus of a batch row
type RowStatus int

const (
	RowOK RowStatus = iota
	RowFailed
	RowCanceled // Not processed because the batch was canceled
)

func (s RowStatus) String() string {
	switch s {
	case RowOK:
		return "ok"
	case RowFailed:
		return "failed"
	case RowCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// RowResult pairs a row with its prediction or its error
type RowResult struct {
	Row    int // Index of the row in the input
	Status RowStatus
	Result PredictionResult
	Err    error
}

// BatchSummary counts the outcomes of a batch
type BatchSummary struct {
	OK       int
	Failed   int
	Canceled int
}

func Summarize(results []RowResult) BatchSummary {
	var s BatchSummary
	for _, r := range results {
		switch r.Status {
		case RowOK:
			s.OK++
		case RowFailed:
			s.Failed++
		default:
			s.Canceled++
		}
	}
	return s
}

// Resolve looks up the three ancestors of a row
func (p *Predictor) Resolve(row PedigreeRow) (AncestorSet, error) {
	if p.resolver == nil {
		return AncestorSet{}, errors.New("no ancestor resolver configured")
	}
	var a AncestorSet
	lookups := []struct {
		tier Tier
		code string
		dst  **SireRecord
	}{
		{SireTier, row.SireCode, &a.Sire},
		{MgsTier, row.MgsCode, &a.Mgs},
		{MmgsTier, row.MmgsCode, &a.Mmgs},
	}
	for _, l := range lookups {
		s, ok := p.resolver.Resolve(l.code)
		if !ok {
			return a, &AncestorNotFoundError{Tier: l.tier, Code: l.code}
		}
		*l.dst = &s
	}
	return a, nil
}

// PedigreeBatch predicts every row by pedigree regression.  Rows fail on
// their own and are reported in input order.  Trait errors fail the whole
// call.  When ctx is canceled the rows not yet started are returned with
// RowCanceled along with ctx.Err().
func (p *Predictor) PedigreeBatch(ctx context.Context, rows []PedigreeRow, keys []traits.Key) ([]RowResult, error) {
	if err := p.ValidateTraits(keys); err != nil {
		return nil, err
	}
	if p.resolver == nil {
		return nil, errors.New("no ancestor resolver configured")
	}

	start := time.Now()
	defer p.metrics.Batch(start)

	results := make([]RowResult, len(rows))
	swg := sizedwaitgroup.New(p.workers)

	for i := range rows {
		if ctx.Err() != nil {
			for j := i; j < len(rows); j++ {
				results[j] = RowResult{Row: j, Status: RowCanceled, Err: ctx.Err()}
				p.metrics.Row(metrics.RowCanceled)
			}
			break
		}
		swg.Add()
		go func(i int) {
			defer swg.Done()
			results[i] = p.predictRow(i, rows[i], keys)
		}(i)
	}
	swg.Wait()

	s := Summarize(results)
	p.logger.Info("pedigree batch finished",
		zap.Int("rows", len(rows)),
		zap.Int("ok", s.OK),
		zap.Int("failed", s.Failed),
		zap.Int("canceled", s.Canceled),
		zap.Duration("elapsed", time.Since(start)))
	if s.Failed > 0 {
		p.logger.Warn("some pedigree rows could not be predicted", zap.Int("failed", s.Failed))
	}
	return results, ctx.Err()
}

func (p *Predictor) predictRow(i int, row PedigreeRow, keys []traits.Key) RowResult {
	a, err := p.Resolve(row)
	if err == nil {
		var v PTA
		if v, err = p.Regress(a, keys); err == nil {
			p.metrics.Row(metrics.RowOK)
			return RowResult{
				Row:    i,
				Status: RowOK,
				Result: PredictionResult{
					Id:       uuid.New(),
					Method:   PedigreeRegression,
					FemaleId: row.FemaleId,
					SireIds:  []string{a.Sire.Id, a.Mgs.Id, a.Mmgs.Id},
					Values:   v,
				},
			}
		}
	}
	p.logger.Debug("pedigree row failed", zap.Int("row", i), zap.String("female", row.FemaleId), zap.Error(err))
	p.metrics.Row(metrics.RowFailed)
	return RowResult{Row: i, Status: RowFailed, Err: err}
}
