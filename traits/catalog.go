// traits project catalog.go
//
// The fixed catalog of published genetic evaluations (PTA) the planner accepts
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
package traits

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Key identifies one published trait, e.g. "nm_dollar"
type Key string

// Keys referenced directly by the planner
const (
	NetMerit Key = "nm_dollar" // Default profit trait for ROI
	TPI      Key = "tpi"
	PL       Key = "pl"
	DPR      Key = "dpr"
)

// ErrUnknownTrait is returned for any key not in the catalog
var ErrUnknownTrait = errors.New("unknown trait")

//go:embed catalog.yaml
var defaultCatalog []byte

type Trait struct {
	Key      Key    `yaml:"key"`
	Label    string `yaml:"label"`
	Unit     string `yaml:"unit"`
	Monetary bool   `yaml:"monetary"`
	Decimals int    `yaml:"decimals"`
	Group    string `yaml:"group"`

	// LowerIsBetter marks traits where smaller values are favorable, e.g. SCS
	LowerIsBetter bool `yaml:"lowerIsBetter"`
}

type catalogFile_t struct {
	Traits []Trait `yaml:"traits"`
}

// Catalog is immutable once built
type Catalog struct {
	traits map[Key]Trait
}

// Default returns the catalog compiled into the binary
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Errorf("embedded trait catalog: %w", err))
	}
	return c
}

// Load reads a catalog from a YAML file with the same layout as catalog.yaml
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trait catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile_t
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing trait catalog YAML: %w", err)
	}
	if len(f.Traits) == 0 {
		return nil, errors.New("trait catalog is empty")
	}

	c := &Catalog{traits: make(map[Key]Trait, len(f.Traits))}
	for _, t := range f.Traits {
		t.Key = Key(strings.TrimSpace(string(t.Key)))
		if t.Key == "" {
			return nil, errors.New("trait catalog entry without a key")
		}
		if _, dup := c.traits[t.Key]; dup {
			return nil, fmt.Errorf("trait %q listed twice in catalog", t.Key)
		}
		if t.Decimals < 0 {
			t.Decimals = 0
		}
		c.traits[t.Key] = t
	}
	return c, nil
}

// Lookup returns the catalog entry for key
func (c *Catalog) Lookup(key Key) (Trait, error) {
	t, ok := c.traits[key]
	if !ok {
		return Trait{}, fmt.Errorf("%w: %q", ErrUnknownTrait, key)
	}
	return t, nil
}

// Has reports whether key is in the catalog
func (c *Catalog) Has(key Key) bool {
	_, ok := c.traits[key]
	return ok
}

// Validate fails on the first key not in the catalog
func (c *Catalog) Validate(keys ...Key) error {
	for _, k := range keys {
		if _, err := c.Lookup(k); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) Len() int { return len(c.traits) }

// Format renders a value for display: monetary traits as "$1,234", others
// with the trait's decimals and unit. Rounding only happens here.
func (c *Catalog) Format(key Key, value float64) (string, error) {
	t, err := c.Lookup(key)
	if err != nil {
		return "", err
	}
	if t.Monetary {
		s := fmt.Sprintf("%.*f", t.Decimals, abs(value))
		s = groupThousands(s)
		if value < 0 {
			return "-$" + s, nil
		}
		return "$" + s, nil
	}
	return fmt.Sprintf("%.*f %s", t.Decimals, value, t.Unit), nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Insert commas into the integer part of a formatted number
func groupThousands(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}
