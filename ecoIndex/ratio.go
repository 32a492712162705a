// ratio
// Ratios that may have a zero denominator
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
package ecoIndex

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrDivisionUndefined is what an undefined Ratio reports when forced
var ErrDivisionUndefined = errors.New("division undefined")

// Undefined is how an undefined ratio is displayed
const Undefined = "undefined"

// Ratio is a quotient that is not defined when its denominator is 0.  An
// undefined ratio is an ordinary result, not an error.
type Ratio struct {
	Value   float64
	Defined bool
}

func Div(num, den float64) Ratio {
	if den == 0 {
		return Ratio{}
	}
	return Ratio{Value: num / den, Defined: true}
}

// Float returns the value or ErrDivisionUndefined
func (r Ratio) Float() (float64, error) {
	if !r.Defined {
		return 0, ErrDivisionUndefined
	}
	return r.Value, nil
}

// Or returns the value, or def when undefined
func (r Ratio) Or(def float64) float64 {
	if !r.Defined {
		return def
	}
	return r.Value
}

func (r Ratio) String() string {
	if !r.Defined {
		return Undefined
	}
	return fmt.Sprintf("%.4g", r.Value)
}

// Percent renders the ratio as a percentage
func (r Ratio) Percent() string {
	if !r.Defined {
		return Undefined
	}
	return fmt.Sprintf("%.1f%%", r.Value*100)
}

// DivMoney divides an amount by a count.  The result is invalid (SQL null
// style) when the count is 0.
func DivMoney(amount decimal.Decimal, count float64) decimal.NullDecimal {
	if count == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount.Div(decimal.NewFromFloat(count)))
}

// FormatMoney renders an amount as $1,234.56, or Undefined
func FormatMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return Undefined
	}
	return Money(d.Decimal)
}

// Money renders an amount as -$1,234.56
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	var b []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b = append(b, ',')
		}
		b = append(b, whole[i])
	}
	return sign + "$" + string(b) + frac
}
