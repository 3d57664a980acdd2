// Package query implements the batch and single-shot orchestrators layered
// on top of package raptor: find_route, detailed_journey, one_to_many,
// travel_time_matrix, calculate_isochrone and time_range. Each is a thin
// wrapper composing a raptor.Sweep with egress evaluation; none touch
// raptor's inner loop.
package query

import "go.uber.org/zap"

// defaultMaxTransfers is used only when MaxTransfers is left nil; an
// explicit zero (spec §8 scenarios A/B/D: "zero transfers allowed") must
// survive fillDefaults unchanged, so the field is a pointer rather than an
// int with a <=0 sentinel.
const defaultMaxTransfers = 4

// Options configures a query orchestrator call.
type Options struct {
	// MaxTransfers bounds the number of transit-to-transit transfers
	// considered; the underlying sweep runs MaxTransfers+1 rounds. A nil
	// value means "unset" and defaults to defaultMaxTransfers; an explicit
	// 0 is a real, meaningful bound (no transfers allowed) and is never
	// overwritten.
	MaxTransfers *int
	// TimeRangeGridStep is the coarse scan interval TimeRange uses to
	// supplement trip-departure-derived candidate times (spec §4.6).
	TimeRangeGridStep int32
	Logger            *zap.SugaredLogger
}

func (o *Options) fillDefaults() {
	if o.MaxTransfers == nil {
		d := defaultMaxTransfers
		o.MaxTransfers = &d
	}
	if o.TimeRangeGridStep <= 0 {
		o.TimeRangeGridStep = 300
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
}

func (o Options) rounds() int { return *o.MaxTransfers + 1 }
