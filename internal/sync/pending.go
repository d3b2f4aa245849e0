package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/localstore"
)

// RetryResult counts the outcome of RetryPending
type RetryResult struct {
	Pushed    int `json:"pushed"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// RetryPending replays the local writes the remote has not accepted yet,
// oldest first. It stops early once the remote is marked offline.
func (e *SyncEngine) RetryPending(ctx context.Context) (RetryResult, error) {
	var res RetryResult
	if e.remote == nil {
		return res, nil
	}

	writes, err := e.local.AllPending(ctx)
	if err != nil {
		return res, err
	}

	for _, w := range writes {
		if ctx.Err() != nil {
			break
		}
		if err := e.replay(ctx, w); err != nil {
			res.Failed++
			e.log.Warn("⚠️  Pending write still rejected",
				zap.String("table", string(w.Table)), zap.String("id", w.ID), zap.String("op", w.Op), zap.Error(err))
			if !e.status.IsOnline() {
				break
			}
			continue
		}
		e.clearPending(ctx, w.Table, w.ID)
		res.Pushed++
	}

	res.Remaining = len(writes) - res.Pushed
	if res.Pushed > 0 {
		e.cache.Clear()
		e.log.Info("🔁 Replayed pending writes", zap.Int("pushed", res.Pushed), zap.Int("remaining", res.Remaining))
	}
	return res, ctx.Err()
}

// replay pushes the current local state of one pending write. A saved row
// that has since disappeared locally is deleted remotely instead.
func (e *SyncEngine) replay(ctx context.Context, w localstore.PendingWrite) error {
	desc, ok := tableDescs[w.Table]
	if !ok {
		return fmt.Errorf("unknown table %q", w.Table)
	}
	if w.Op == localstore.PendingDelete {
		return e.pushDelete(ctx, w.Table, w.ID)
	}

	doc, err := e.local.Get(ctx, w.Table, w.ID)
	if errors.Is(err, localstore.ErrNotFound) {
		return e.pushDelete(ctx, w.Table, w.ID)
	}
	if err != nil {
		return err
	}
	canonical, err := desc.canonicalOf(doc)
	if err != nil {
		return err
	}
	return e.pushSave(ctx, desc, canonical)
}

func (e *SyncEngine) retryPendingQuietly(ctx context.Context) {
	if _, err := e.RetryPending(ctx); err != nil {
		e.log.Warn("⚠️  Pending write replay failed", zap.Error(err))
	}
}
