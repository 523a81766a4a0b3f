// Package batch runs several configured conversations concurrently and
// collects their summaries.
package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/duologue/internal/client"
	"github.com/danielpatrickdp/duologue/internal/config"
	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/driver"
	"github.com/danielpatrickdp/duologue/internal/scoring"
)

// #region types

// Item is one conversation to run. Store and Embedder may be nil.
type Item struct {
	Name       string
	Config     config.Config
	Generators map[conversation.Role]client.Generator
	Embedder   scoring.Embedder
	Store      *conversation.Store
}

// Result pairs an item's name with its run outcome. Err covers wiring and
// persistence failures; generation failures end up in the summary instead.
type Result struct {
	Name    string
	Summary driver.Summary
	Err     error
}

// #endregion types

// #region run

// Run executes every item with at most concurrency conversations in flight.
// One item's failure never cancels its siblings; results are returned in
// item order.
func Run(ctx context.Context, items []Item, concurrency int, logger *zap.Logger) []Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(items))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, item := range items {
		i, item := i, item
		group.Go(func() error {
			results[i] = runItem(ctx, item, logger.With(zap.String("item", item.Name)))
			return nil
		})
	}
	group.Wait()
	return results
}

func runItem(ctx context.Context, item Item, logger *zap.Logger) Result {
	result := Result{Name: item.Name}

	d, err := driver.FromConfig(item.Config, item.Generators, item.Embedder, item.Store, logger)
	if err != nil {
		result.Err = fmt.Errorf("wire %s: %w", item.Name, err)
		return result
	}

	summary, err := d.Run(ctx)
	result.Summary = summary
	if err != nil {
		result.Err = fmt.Errorf("run %s: %w", item.Name, err)
		return result
	}

	logger.Info("conversation finished",
		zap.Int("turns", summary.Turns),
		zap.Int("interventions", summary.TotalInterventions()),
		zap.String("end_reason", string(summary.EndReason)))
	return result
}

// #endregion run
