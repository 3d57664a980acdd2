package query

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/go-transit/raptor-engine/raptor"
	"github.com/go-transit/raptor-engine/transitmodel"
)

// TravelTimeMatrix computes the earliest arrival from every origin to every
// destination departing at departAt (spec §6 "travel_time_matrix"),
// parallelizing over origin rows via errgroup with one pooled raptor.State
// per worker (spec §5 "batch parallelism at the batch boundary").
func TravelTimeMatrix(ctx context.Context, model *transitmodel.Model, origins, dests []*transitmodel.TransitPoint, departAt int32, opts Options) ([][]RouteResult, error) {
	opts.fillDefaults()
	pool := raptor.NewPool(len(model.Stops))

	matrix := make([][]RouteResult, len(origins))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, origin := range origins {
		i, origin := i, origin
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			st := pool.Get(opts.rounds())
			defer pool.Put(st)

			res := raptor.Sweep(model, st, origin.Access, departAt, opts.rounds(), nil)
			row := make([]RouteResult, len(dests))
			for j, d := range dests {
				stop, arrival, ok := bestEgress(res, d)
				if !ok {
					continue
				}
				row[j] = RouteResult{Reached: true, ArrivalS: arrival, Transfers: res.Transfers(stop)}
			}
			matrix[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	opts.Logger.Debugw("travel time matrix computed", "origins", len(origins), "dests", len(dests))
	return matrix, nil
}
