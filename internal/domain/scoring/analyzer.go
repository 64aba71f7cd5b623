package scoring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/internal/domain/types"
)

// Analyze scores every task under the named strategy and returns them sorted
// by score, highest first. Ties keep input order. An empty name means the
// default strategy; an unknown one is scored as the default but echoed back
// unchanged.
func (s *Scorer) Analyze(ctx context.Context, tasks []model.Task, strategy string) (types.Analysis, error) {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if err := ctx.Err(); err != nil {
		return types.Analysis{}, err
	}

	g := NewGraph(tasks)
	results, err := s.scoreAll(ctx, tasks, g, Lookup(strategy))
	if err != nil {
		return types.Analysis{}, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return types.Analysis{
		Tasks:    results,
		Cycles:   g.Cycles(),
		Strategy: strategy,
	}, nil
}

// scoreAll fills results in input order. Large lists are split into chunks
// scored by at most s.workers goroutines.
func (s *Scorer) scoreAll(ctx context.Context, tasks []model.Task, g *Graph, w Weights) ([]types.ScoreResult, error) {
	results := make([]types.ScoreResult, len(tasks))
	today := s.Today()

	if len(tasks) < s.parallelThreshold || s.workers < 2 {
		if err := s.scoreRange(tasks, results, g, w, today, 0, len(tasks)); err != nil {
			return nil, err
		}
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	chunk := (len(tasks) + s.workers - 1) / s.workers
	for lo := 0; lo < len(tasks); lo += chunk {
		hi := min(lo+chunk, len(tasks))
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return s.scoreRange(tasks, results, g, w, today, lo, hi)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Scorer) scoreRange(
	tasks []model.Task,
	results []types.ScoreResult,
	g *Graph,
	w Weights,
	today time.Time,
	lo, hi int,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()
	for i := lo; i < hi; i++ {
		results[i] = s.Score(tasks[i], g, w, today)
	}
	return nil
}
