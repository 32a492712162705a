// animal project cohort.go
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

import "time"

// Females younger than this many months are calves
const CalfAgeMonths = 12

// Classify assigns a female to her cohort as of a date.  Parity wins over
// age whenever it is known.
func Classify(f FemaleRecord, asOf time.Time) Cohort {
	switch {
	case f.Parity >= 3:
		return Multiparous
	case f.Parity == 2:
		return Secundiparous
	case f.Parity == 1:
		return Primiparous
	}

	if f.BirthDate.IsZero() {
		return Undetermined
	}
	if AgeInMonths(f.BirthDate, asOf) < CalfAgeMonths {
		return Calf
	}
	return Heifer
}

// AgeInMonths counts whole calendar months from birth to asOf.  A month is
// complete once the day of month is reached.
func AgeInMonths(birth, asOf time.Time) int {
	by, bm, bd := birth.Date()
	ay, am, ad := asOf.In(birth.Location()).Date()

	months := (ay-by)*12 + int(am-bm)
	if ad < bd {
		months--
	}
	return months
}
