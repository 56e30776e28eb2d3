package makeready

import (
	"github.com/rs/zerolog"

	"github.com/spanline/makeready/pkg/errors"
	"github.com/spanline/makeready/pkg/qc"
	"github.com/spanline/makeready/pkg/route"
)

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets the run logger. The default is the package logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "must not be nil"}
		}
		p.logger = logger
		return nil
	}
}

// WithProgress registers a stage-boundary progress callback. The callback
// returning false cancels the run.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) error {
		p.progress = fn
		return nil
	}
}

// WithManualRoutes supplies ordered manual routes. Manual routing fully
// replaces automatic edge assembly for the poles it names, unless QC is
// also active.
func WithManualRoutes(routes []route.ManualRoute) Option {
	return func(p *Pipeline) error {
		p.manual = routes
		return nil
	}
}

// WithQC activates QC routing and span correction. QC takes precedence over
// manual and automatic routing.
func WithQC(sheet *qc.Sheet) Option {
	return func(p *Pipeline) error {
		p.qcSheet = sheet
		return nil
	}
}

// WithGeocoder enables reverse address lookups for poles with coordinates
// but no surveyed address.
func WithGeocoder(g Geocoder) Option {
	return func(p *Pipeline) error {
		p.geocoder = g
		return nil
	}
}

// WithTensionCalculator enables cable tension computation.
func WithTensionCalculator(tc TensionCalculator) Option {
	return func(p *Pipeline) error {
		p.tension = tc
		return nil
	}
}
