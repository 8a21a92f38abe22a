package traversal

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/observability"
)

const opBatchSequential = "next_sequential_gates"

// BatchNextSequentialGates runs [Traversal.NextSequentialGates] for every
// gate on up to workers goroutines (workers <= 0 uses one per CPU). Each
// worker owns a private [Cache]; a cache passed through [WithCache] is
// ignored because caches are not safe for concurrent use.
//
// The first failing query or the cancellation of ctx stops the batch.
func (t *Traversal) BatchNextSequentialGates(ctx context.Context, gates []*netlist.Gate, dir Direction, workers int, opts ...SequentialOption) (map[netlist.GateID][]*netlist.Gate, error) {
	if err := dir.check(); err != nil {
		return nil, err
	}
	for _, g := range gates {
		if err := t.checkGate(g); err != nil {
			return nil, errors.Context(err, "BatchNextSequentialGates")
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, len(gates)))

	hooks := observability.Batch()
	ctx = hooks.OnBatchStart(ctx, opBatchSequential, len(gates), workers)
	began := time.Now()

	out, err := t.runBatch(ctx, gates, dir, workers, opts)

	hooks.OnBatchComplete(ctx, opBatchSequential, len(gates), time.Since(began), err)
	if err != nil {
		return nil, err
	}
	t.debug("BatchNextSequentialGates", began, len(gates), len(out))
	return out, nil
}

func (t *Traversal) runBatch(ctx context.Context, gates []*netlist.Gate, dir Direction, workers int, opts []SequentialOption) (map[netlist.GateID][]*netlist.Gate, error) {
	out := make(map[netlist.GateID][]*netlist.Gate, len(gates))
	var mu sync.Mutex

	work := make(chan *netlist.Gate)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(work)
		for _, gate := range gates {
			select {
			case work <- gate:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			wopts := append(slices.Clip(opts), WithCache(NewCache()))
			for gate := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				next, err := t.NextSequentialGates(gate, dir, wopts...)
				if err != nil {
					return errors.Context(err, "gate %s", gate.Name())
				}
				mu.Lock()
				out[gate.ID()] = next
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
