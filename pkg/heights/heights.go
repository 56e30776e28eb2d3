// Package heights converts between the free-text height notations found in
// field surveys ("5'-10\"", "70", "5.8") and a canonical decimal-feet value
// with a canonical display string.
package heights

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spanline/makeready/pkg/errors"
)

// decimalFeetMax is the plausibility threshold for unit-less decimals:
// values below it are read as feet, values at or above it as inches.
// No pole attachment sits fifty feet up a distribution pole.
const decimalFeetMax = 50

var (
	feetInchesRe = regexp.MustCompile(`^([0-9]+)'\s*-?\s*([0-9]+)\s*(?:"|″)?$`)
	feetOnlyRe   = regexp.MustCompile(`^([0-9]+)'$`)
	decimalRe    = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
	integerRe    = regexp.MustCompile(`^[0-9]+$`)
)

// Height is a parsed attachment height.
type Height struct {
	Feet    float64 // decimal feet, rounded to 2 places
	Display string  // canonical `F' I"` form
}

// Parse converts a height expression to canonical decimal feet.
// Blank, non-numeric, and negative input return ErrUnparseableHeight.
func Parse(s string) (Height, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "″", `"`))
	if s == "" || strings.HasPrefix(s, "-") {
		return Height{}, errors.ErrUnparseableHeight
	}

	if m := feetInchesRe.FindStringSubmatch(s); m != nil {
		feet, _ := strconv.Atoi(m[1])
		inches, _ := strconv.Atoi(m[2])
		return fromFeetInches(feet, inches), nil
	}

	if m := feetOnlyRe.FindStringSubmatch(s); m != nil {
		feet, _ := strconv.Atoi(m[1])
		return fromFeetInches(feet, 0), nil
	}

	if decimalRe.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Height{}, errors.ErrUnparseableHeight
		}
		if v < decimalFeetMax {
			return FromFeet(v), nil
		}
		return FromInches(v), nil
	}

	if integerRe.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Height{}, errors.ErrUnparseableHeight
		}
		return FromInches(v), nil
	}

	return Height{}, errors.ErrUnparseableHeight
}

// FromInches converts raw inches to a canonical height.
func FromInches(inches float64) Height {
	if inches < 0 {
		inches = 0
	}
	total := int(inches)
	return Height{
		Feet:    round2(inches / 12),
		Display: format(total/12, total%12),
	}
}

// FromFeet converts decimal feet to a canonical height.
func FromFeet(feet float64) Height {
	if feet < 0 {
		feet = 0
	}
	return Height{
		Feet:    round2(feet),
		Display: Display(feet),
	}
}

// Display renders decimal feet as the canonical `F' I"` string.
func Display(feet float64) string {
	if feet < 0 {
		feet = 0
	}
	whole := int(feet)
	inches := int(math.Round((feet - float64(whole)) * 12))
	if inches >= 12 {
		whole++
		inches -= 12
	}
	return format(whole, inches)
}

func fromFeetInches(feet, inches int) Height {
	return Height{
		Feet:    round2(float64(feet) + float64(inches)/12),
		Display: format(feet, inches),
	}
}

func format(feet, inches int) string {
	return strconv.Itoa(feet) + `' ` + strconv.Itoa(inches) + `"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
