// Package parallel splits per-pixel image work into row bands.
package parallel

import (
	"context"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Workers resolves a requested worker count for h rows.
// Zero or negative means GOMAXPROCS. The result is always in [1, max(h, 1)].
func Workers(requested, h int) int {
	if requested <= 0 {
		requested = runtime.GOMAXPROCS(0)
	}
	return lo.Clamp(requested, 1, max(h, 1))
}

// Rows calls fn for contiguous bands [y0, y1) covering 0..h.
// Bands run concurrently on up to workers goroutines. The context is checked
// before each band starts; the first error cancels the remaining bands.
func Rows(ctx context.Context, h, workers int, fn func(y0, y1 int) error) error {
	if h <= 0 {
		return ctx.Err()
	}
	workers = Workers(workers, h)

	// Several bands per worker keeps cancellation responsive on tall images.
	bands := min(h, workers*4)
	rowsPerBand := (h + bands - 1) / bands

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += rowsPerBand {
		y1 := min(y0+rowsPerBand, h)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(y0, y1)
		})
	}
	return g.Wait()
}
