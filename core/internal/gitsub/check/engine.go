// Package check decides whether every child repository that a parent
// operation would record is in a durable state.
//
// Validation runs in three phases separated by barriers, cheapest first:
//
//  1. relevance: does the parent see changes under the child path?
//  2. local safety: is the child's own working tree clean?
//  3. durability: is the child's commit present on one of its remotes?
//
// Phase 2 and 3 fail closed. A completeness check against the lock
// manifest follows the phases.
package check

import (
	"context"
	"fmt"
	"runtime"

	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/diag"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/telemetry"
	gitUtil "github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/git"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const scopeName = "github.com/kuchuk-borom-debbarma/GitSub/check"

// partitionThreshold is the survivor count above which phase 3 splits
// children into a parallel and a sequential pool.
const partitionThreshold = 2

// Engine runs the validation pipeline. VCS and Prober must be set. An
// Engine runs one validation at a time.
type Engine struct {
	VCS    gitUtil.VCS
	Prober Prober
	// Workers caps every pool. 0 means the number of CPUs.
	Workers int
	// Interactive lets the sequential pool of phase 3 prompt for
	// credentials. The parallel pool never prompts.
	Interactive bool

	caches *cacheLocks
}

// Validate checks discovered against the rules above and returns the
// children that had parent-visible changes and passed every phase, in
// discovery order. locked is the manifest's view; every locked child must
// be among discovered.
func (e *Engine) Validate(ctx context.Context, parentRoot string, locked, discovered []model.Child) ([]model.Child, error) {
	if e.caches == nil {
		e.caches = newCacheLocks()
	}

	ctx, span := telemetry.Tracer(scopeName).Start(ctx, "gitsub.check.validate")
	defer span.End()
	entered, _ := telemetry.Meter(scopeName).Int64Counter("gitsub.check.children",
		metric.WithDescription("Children entering a validation phase"),
	)

	// 1. Relevance
	entered.Add(ctx, int64(len(discovered)), metric.WithAttributes(attribute.String("phase", "relevance")))
	changed, err := e.phaseRelevance(ctx, parentRoot, discovered)
	if err != nil {
		return nil, err
	}
	log.Debug().Strs("children", model.Paths(changed)).Msg("children with parent-visible changes")

	// 2. Local safety
	entered.Add(ctx, int64(len(changed)), metric.WithAttributes(attribute.String("phase", "local")))
	if err := e.phaseLocal(ctx, changed); err != nil {
		return nil, err
	}

	// 3. Durability
	entered.Add(ctx, int64(len(changed)), metric.WithAttributes(attribute.String("phase", "durability")))
	if err := e.phaseDurability(ctx, changed); err != nil {
		return nil, err
	}

	// 4. Completeness
	if err := Completeness(locked, discovered); err != nil {
		return nil, err
	}
	return changed, nil
}

// Completeness reports every locked child that discovery did not find.
func Completeness(locked, discovered []model.Child) error {
	seen := make(map[string]bool, len(discovered))
	for _, c := range discovered {
		seen[c.RelPath] = true
	}
	var failures []diag.Failure
	for _, c := range locked {
		if !seen[c.RelPath] {
			failures = append(failures, diag.Failure{Path: c.RelPath, Reason: "locked in manifest but not found on disk"})
		}
	}
	return diag.NewValidationError(diag.ErrMissingChildOnDisk, failures)
}

func (e *Engine) phaseRelevance(ctx context.Context, parentRoot string, children []model.Child) ([]model.Child, error) {
	ctx, span := telemetry.Tracer(scopeName).Start(ctx, "gitsub.check.phase1")
	defer span.End()

	keep := make([]bool, len(children))
	err := e.forEach(len(children), func(i int) error {
		out, err := e.VCS.Status(ctx, parentRoot, children[i].RelPath)
		if err != nil {
			return fmt.Errorf("failed to read parent status for %s: %w", children[i].RelPath, err)
		}
		keep[i] = out != ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []model.Child
	for i, c := range children {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (e *Engine) phaseLocal(ctx context.Context, children []model.Child) error {
	ctx, span := telemetry.Tracer(scopeName).Start(ctx, "gitsub.check.phase2")
	defer span.End()

	dirty := make([]bool, len(children))
	err := e.forEach(len(children), func(i int) error {
		out, err := e.VCS.Status(ctx, children[i].AbsPath)
		if err != nil {
			return fmt.Errorf("failed to read status of %s: %w", children[i].RelPath, err)
		}
		dirty[i] = out != ""
		return nil
	})
	if err != nil {
		return err
	}

	var failures []diag.Failure
	for i, c := range children {
		if dirty[i] {
			failures = append(failures, diag.Failure{Path: c.RelPath, Reason: "uncommitted changes"})
		}
	}
	return diag.NewValidationError(diag.ErrUnpushedLocalChanges, failures)
}

func (e *Engine) phaseDurability(ctx context.Context, children []model.Child) error {
	ctx, span := telemetry.Tracer(scopeName).Start(ctx, "gitsub.check.phase3")
	defer span.End()

	if len(children) == 0 {
		return nil
	}
	log.Info().Int("children", len(children)).Msg("Checking that child commits exist on their remotes...")

	reasons := make([]string, len(children))
	var parallel, sequential []int

	if len(children) > partitionThreshold {
		public := make([]bool, len(children))
		_ = e.forEach(len(children), func(i int) error {
			if r, ok := children[i].PrimaryRemote(); ok {
				public[i] = e.Prober.IsPublic(ctx, r.URL)
			}
			return nil
		})
		for i := range children {
			if public[i] {
				parallel = append(parallel, i)
			} else {
				sequential = append(sequential, i)
			}
		}
	} else {
		for i := range children {
			sequential = append(sequential, i)
		}
	}
	span.SetAttributes(
		attribute.Int("parallel", len(parallel)),
		attribute.Int("sequential", len(sequential)),
	)

	noPrompt := gitUtil.NoPrompt(ctx)
	err := e.forEach(len(parallel), func(k int) error {
		i := parallel[k]
		reasons[i] = e.durable(noPrompt, children[i])
		return nil
	})
	if err != nil {
		return err
	}
	// The batch is already rejected; the sequential pool would only
	// prompt for credentials and touch the network for nothing.
	if err := durabilityError(children, reasons); err != nil {
		log.Debug().Int("skipped", len(sequential)).Msg("parallel durability checks failed, skipping sequential pool")
		return err
	}

	seqCtx := ctx
	if !e.Interactive {
		seqCtx = noPrompt
	}
	for _, i := range sequential {
		if err := ctx.Err(); err != nil {
			return err
		}
		reasons[i] = e.durable(seqCtx, children[i])
	}
	return durabilityError(children, reasons)
}

func durabilityError(children []model.Child, reasons []string) error {
	var failures []diag.Failure
	for i, c := range children {
		if reasons[i] != "" {
			failures = append(failures, diag.Failure{Path: c.RelPath, Reason: reasons[i]})
		}
	}
	return diag.NewValidationError(diag.ErrCommitNotDurableOnRemote, failures)
}

// forEach runs fn for 0..n-1 on a bounded pool and waits for all of them.
// Tasks are not cancelled when one fails; the first error is returned
// after the barrier.
func (e *Engine) forEach(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	var g errgroup.Group
	g.SetLimit(e.limit(n))
	for i := range n {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

func (e *Engine) limit(n int) int {
	w := e.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	return max(1, min(w, n))
}
