package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTestLoggerCapturesOutput(t *testing.T) {
	tl := NewTestLogger(t)

	tl.Info().Str("scid", "14A").Msg("resolved pole")

	assert.True(t, tl.Contains("resolved pole"))
	assert.True(t, tl.Contains("14A"))
	assert.Len(t, tl.Lines(), 1)
}

func TestContextRoundTrip(t *testing.T) {
	tl := NewTestLogger(t)

	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Debug().Msg("from context")

	assert.True(t, tl.Contains("from context"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, FromContext(nil)) //nolint:staticcheck // exercising the nil path
}

func TestWithRunID(t *testing.T) {
	tl := NewTestLogger(t)

	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithRunID(ctx, "run-123")

	assert.Equal(t, "run-123", RunID(ctx))

	FromContext(ctx).Info().Msg("tagged")
	assert.True(t, tl.Contains("run-123"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("debug").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "info", parseLevel("nonsense").String())
}
