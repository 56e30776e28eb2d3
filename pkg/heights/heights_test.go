package heights

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanline/makeready/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		wantFeet float64
		wantDisp string
	}{
		{`5'-10"`, 5.83, `5' 10"`},
		{`5' 10"`, 5.83, `5' 10"`},
		{`22'-0"`, 22.0, `22' 0"`},
		{`22'`, 22.0, `22' 0"`},
		{`5.8`, 5.8, `5' 10"`},
		{`49.99`, 49.99, `50' 0"`},
		{`70.0`, 5.83, `5' 10"`}, // at or above the threshold: inches
		{`70`, 5.83, `5' 10"`},   // unit-less integer: inches
		{`288`, 24.0, `24' 0"`},
		{`346″`, 28.83, `28' 10"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, err := Parse(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantFeet, h.Feet, 0.005)
			assert.Equal(t, tt.wantDisp, h.Display)
		})
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "-5", `-5'-10"`, "ten feet", `5'x`} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, errors.ErrUnparseableHeight, "input %q", in)
	}
}

func TestRoundTripWithinOneInch(t *testing.T) {
	// decimal_to_display(display_to_decimal(s)) must reproduce the numeric
	// value within one inch for all well-formed height strings.
	inputs := []string{`5'-10"`, `22'-0"`, `31' 6"`, `18'`, `40' 11"`}

	for _, in := range inputs {
		h, err := Parse(in)
		require.NoError(t, err)

		back, err := Parse(Display(h.Feet))
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(back.Feet-h.Feet), 1.0/12+1e-9, "round trip drift for %q", in)
	}
}

func TestFromInches(t *testing.T) {
	h := FromInches(346)
	assert.Equal(t, `28' 10"`, h.Display)
	assert.InDelta(t, 28.83, h.Feet, 0.005)

	zero := FromInches(0)
	assert.Equal(t, `0' 0"`, zero.Display)
}

func TestDisplayCarriesInchOverflow(t *testing.T) {
	// 23.999 ft rounds to 24' 0", not 23' 12".
	assert.Equal(t, `24' 0"`, Display(23.999))
}
