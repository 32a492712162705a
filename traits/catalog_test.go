package traits

import (
	"errors"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() < 50 {
		t.Errorf("default catalog has %d traits, want at least 50", c.Len())
	}
	for _, k := range []Key{NetMerit, TPI, PL, DPR} {
		if !c.Has(k) {
			t.Errorf("default catalog missing %q", k)
		}
	}
	nm, err := c.Lookup(NetMerit)
	if err != nil {
		t.Fatal(err)
	}
	if !nm.Monetary {
		t.Error("net merit should be monetary")
	}
}

func TestLowerIsBetter(t *testing.T) {
	c := Default()
	tests := []struct {
		key  Key
		want bool
	}{
		{"scs", true},
		{"rfi", true},
		{"sce", true},
		{"dsb", true},
		{NetMerit, false},
		{DPR, false},
	}
	for _, tt := range tests {
		tr, err := c.Lookup(tt.key)
		if err != nil {
			t.Fatal(err)
		}
		if tr.LowerIsBetter != tt.want {
			t.Errorf("%s LowerIsBetter = %v, want %v", tt.key, tr.LowerIsBetter, tt.want)
		}
	}
}

func TestLookupUnknownTrait(t *testing.T) {
	c := Default()
	_, err := c.Lookup("not_a_trait")
	if !errors.Is(err, ErrUnknownTrait) {
		t.Fatalf("Lookup error = %v, want ErrUnknownTrait", err)
	}
	if err := c.Validate(NetMerit, "bogus"); !errors.Is(err, ErrUnknownTrait) {
		t.Errorf("Validate error = %v, want ErrUnknownTrait", err)
	}
	if _, err := c.Format("bogus", 1); !errors.Is(err, ErrUnknownTrait) {
		t.Errorf("Format error = %v, want ErrUnknownTrait", err)
	}
}

func TestFormat(t *testing.T) {
	c := Default()
	tests := []struct {
		key   Key
		value float64
		want  string
	}{
		{NetMerit, 604.6, "$605"},
		{NetMerit, 1234.4, "$1,234"},
		{NetMerit, -1234567, "-$1,234,567"},
		{PL, 2.345, "2.3 months"},
		{"fat_pct", 0.126, "0.13 %"},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, err := c.Format(tt.key, tt.value)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Format(%s, %v) = %q, want %q", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	data := []byte(`traits:
  - {key: a, label: A}
  - {key: a, label: A again}
`)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected duplicate key error")
	}
	if _, err := Parse([]byte("traits: []")); err == nil {
		t.Fatal("expected empty catalog error")
	}
}
