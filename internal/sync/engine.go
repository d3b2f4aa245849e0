package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/config"
	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

// SyncEngine is the single entry point for every entity read and write. It
// serves reads from the read cache, then the remote, then the local mirror,
// and applies writes to the local mirror unconditionally and to the remote
// when one is configured.
type SyncEngine struct {
	mu sync.RWMutex

	local  *localstore.Store
	remote Remote
	config *config.SyncConfig
	log    *zap.Logger
	cache  *ReadCache
	status *RemoteStatus

	origin    string
	notifiers []Notifier
}

// NewSyncEngine creates the engine. remote may be nil for offline-only
// operation.
func NewSyncEngine(local *localstore.Store, remote Remote, cfg *config.SyncConfig, log *zap.Logger) *SyncEngine {
	if cfg == nil {
		cfg = config.DefaultSyncConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}

	origin, _ := os.Hostname()
	origin = origin + "-" + uuid.NewString()[:8]

	e := &SyncEngine{
		local:  local,
		remote: remote,
		config: cfg,
		log:    log.Named("sync"),
		cache:  NewReadCache(cfg.CacheTTLDuration()),
		origin: origin,
	}
	e.status = NewRemoteStatus(remote, time.Duration(cfg.HealthCheckInterval)*time.Second, e.log)
	e.status.onHealthy = e.retryPendingQuietly

	if remote == nil {
		e.log.Info("📴 No remote configured, running off the local mirror")
	}
	return e
}

// Cache returns the engine's read cache
func (e *SyncEngine) Cache() *ReadCache {
	return e.cache
}

// Local returns the local mirror store
func (e *SyncEngine) Local() *localstore.Store {
	return e.local
}

// Config returns the sync configuration
func (e *SyncEngine) Config() *config.SyncConfig {
	return e.config
}

// Origin identifies this process in change events
func (e *SyncEngine) Origin() string {
	return e.origin
}

// HasRemote reports whether a remote is configured
func (e *SyncEngine) HasRemote() bool {
	return e.remote != nil
}

// Status returns remote health and local mirror information
func (e *SyncEngine) Status(ctx context.Context) StatusReport {
	report := StatusReport{
		RemoteConfigured: e.remote != nil,
		Remote:           e.status.Snapshot(),
		CacheEntries:     e.cache.Len(),
		Origin:           e.origin,
	}
	if v, err := e.local.SchemaVersion(ctx); err == nil {
		report.LocalSchemaVersion = v
	}
	if pending, err := e.local.AllPending(ctx); err == nil {
		report.PendingWrites = len(pending)
	}
	return report
}

// CheckRemote pings the remote once and records the outcome. Without a
// remote it does nothing.
func (e *SyncEngine) CheckRemote(ctx context.Context) error {
	return e.status.Check(ctx)
}

// Start begins background remote health checks. Every healthy ping also
// replays pending writes.
func (e *SyncEngine) Start() {
	e.status.Start()
}

// Stop halts background work
func (e *SyncEngine) Stop() {
	e.status.Stop()
}

// AddNotifier registers a receiver of change events
func (e *SyncEngine) AddNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifiers = append(e.notifiers, n)
}

func (e *SyncEngine) notify(entity EntityType, id string, op Operation) {
	e.mu.RLock()
	notifiers := e.notifiers
	e.mu.RUnlock()

	ev := ChangeEvent{Entity: entity, ID: id, Op: op, At: time.Now().UTC(), Origin: e.origin}
	for _, n := range notifiers {
		n.Notify(ev)
	}
}

// withRemoteTimeout bounds one remote call and records its outcome
func (e *SyncEngine) withRemoteTimeout(ctx context.Context, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.config.RemoteTimeoutDuration())
	defer cancel()

	start := time.Now()
	err := call(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	e.status.Record(err, time.Since(start))
	return err
}

// readEntities implements the read path shared by every GetX. The cache
// holds encoded documents so every caller gets its own copy.
func readEntities[T models.SyncableEntity](ctx context.Context, e *SyncEngine, desc *entityDesc[T], f filter) ([]T, error) {
	key := cacheKey(desc.entity, f)
	if cached, ok := e.cache.Get(key); ok {
		return decodeDocs(e, desc, cached.([][]byte)), nil
	}

	if e.remote != nil {
		var rows []map[string]interface{}
		err := e.withRemoteTimeout(ctx, func(ctx context.Context) error {
			var err error
			rows, err = e.remote.Select(ctx, string(desc.table), f.remote())
			return err
		})
		if err == nil {
			items, docs := mergeRemoteRows(ctx, e, desc, f, rows)
			if len(items) > 0 {
				e.cache.Set(key, docs)
				return items, nil
			}
			// Nothing remote for this filter; the mirror may still hold rows
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.Warn("⚠️  Remote read failed, using local mirror",
				zap.String("entity", string(desc.entity)), zap.String("filter", f.signature()), zap.Error(err))
		}
	}

	items, docs, err := readLocal(ctx, e, desc, f)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.log.Warn("⚠️  Local mirror read failed, returning empty result",
			zap.String("entity", string(desc.entity)), zap.Error(err))
		return []T{}, nil
	}

	e.cache.Set(key, docs)
	return items, nil
}

// mergeRemoteRows mirrors a successful remote read and overlays the local
// writes the remote has not accepted yet: rows with a pending save come from
// the mirror, rows with a pending delete are dropped.
func mergeRemoteRows[T models.SyncableEntity](ctx context.Context, e *SyncEngine, desc *entityDesc[T], f filter, rows []map[string]interface{}) ([]T, [][]byte) {
	pending, err := e.local.Pending(ctx, desc.table)
	if err != nil {
		e.log.Warn("⚠️  Failed to read pending writes",
			zap.String("entity", string(desc.entity)), zap.Error(err))
	}

	items, docs := mirrorRows(ctx, e, desc, rows, pending)
	if !hasPendingSave(pending) {
		return items, docs
	}

	localItems, localDocs, err := readLocal(ctx, e, desc, f)
	if err != nil {
		e.log.Warn("⚠️  Failed to read pending rows from local mirror",
			zap.String("entity", string(desc.entity)), zap.Error(err))
		return items, docs
	}
	for i, item := range localItems {
		if pending[item.GetEntityID()] == localstore.PendingSave {
			items = append(items, item)
			docs = append(docs, localDocs[i])
		}
	}
	return items, docs
}

func hasPendingSave(pending map[string]string) bool {
	for _, op := range pending {
		if op == localstore.PendingSave {
			return true
		}
	}
	return false
}

// mirrorRows normalizes remote rows and upserts them into the local mirror
// in one transaction. Rows that fail to normalize are skipped, as are ids
// with a pending local write, which is newer than the remote copy.
func mirrorRows[T models.SyncableEntity](ctx context.Context, e *SyncEngine, desc *entityDesc[T], rows []map[string]interface{}, pending map[string]string) ([]T, [][]byte) {
	items := make([]T, 0, len(rows))
	docs := make([][]byte, 0, len(rows))
	records := make([]localstore.Record, 0, len(rows))

	for _, row := range rows {
		item, err := desc.normalize(row)
		if err == nil && item.GetEntityID() == "" {
			err = errors.New("row has no id")
		}
		if err != nil {
			e.log.Warn("⚠️  Skipping remote row", zap.String("entity", string(desc.entity)), zap.Error(err))
			continue
		}
		if _, ok := pending[item.GetEntityID()]; ok {
			continue
		}

		doc, canonical, err := desc.encode(item)
		if err != nil {
			e.log.Warn("⚠️  Skipping remote row", zap.String("entity", string(desc.entity)), zap.Error(err))
			continue
		}
		items = append(items, item)
		docs = append(docs, doc)
		records = append(records, desc.record(item.GetEntityID(), doc, canonical))
	}

	if err := e.local.PutMany(ctx, desc.table, records); err != nil {
		e.log.Warn("⚠️  Failed to mirror remote rows locally",
			zap.String("entity", string(desc.entity)), zap.Int("rows", len(records)), zap.Error(err))
	}
	return items, docs
}

func readLocal[T models.SyncableEntity](ctx context.Context, e *SyncEngine, desc *entityDesc[T], f filter) ([]T, [][]byte, error) {
	docs, err := e.local.Find(ctx, desc.table, f.local()...)
	if err != nil {
		return nil, nil, err
	}

	items := make([]T, 0, len(docs))
	kept := make([][]byte, 0, len(docs))
	for _, doc := range docs {
		item, err := desc.decode(doc)
		if err != nil {
			e.log.Warn("⚠️  Skipping undecodable local row", zap.String("entity", string(desc.entity)), zap.Error(err))
			continue
		}
		items = append(items, item)
		kept = append(kept, doc)
	}
	return items, kept, nil
}

func decodeDocs[T models.SyncableEntity](e *SyncEngine, desc *entityDesc[T], docs [][]byte) []T {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := desc.decode(doc)
		if err != nil {
			e.log.Warn("⚠️  Skipping undecodable cached row", zap.String("entity", string(desc.entity)), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

// getEntity returns one entity by id through the read path of its table
func getEntity[T models.SyncableEntity](ctx context.Context, e *SyncEngine, desc *entityDesc[T], id string) (T, error) {
	var zero T
	items, err := readEntities(ctx, e, desc, where("id", id))
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, fmt.Errorf("%s %s: %w", desc.entity, id, ErrNotFound)
	}
	return items[0], nil
}

// saveEntity implements the write path shared by every SaveX. The item's id
// is filled in when empty.
func saveEntity[T models.SyncableEntity](ctx context.Context, e *SyncEngine, desc *entityDesc[T], item *T) error {
	if (*item).GetEntityID() == "" {
		desc.setID(item, uuid.NewString())
	}
	id := (*item).GetEntityID()

	e.cache.InvalidatePrefix(desc.entity)
	defer e.cache.InvalidatePrefix(desc.entity)

	doc, canonical, err := desc.encode(*item)
	if err != nil {
		return err
	}
	if err := e.local.Put(ctx, desc.table, desc.record(id, doc, canonical)); err != nil {
		return fmt.Errorf("failed to save %s %s locally: %w", desc.entity, id, err)
	}
	e.notify(desc.entity, id, OpSave)

	if e.remote == nil {
		return nil
	}

	if err := e.pushSave(ctx, desc, canonical); err != nil {
		e.log.Warn("⚠️  Remote save failed, kept locally",
			zap.String("entity", string(desc.entity)), zap.String("id", id), zap.Error(err))
		e.markPending(ctx, desc.table, id, localstore.PendingSave)
		return &RemoteWriteError{Entity: desc.entity, ID: id, Op: OpSave, Err: err}
	}
	e.clearPending(ctx, desc.table, id)
	return nil
}

// deleteEntity removes id from the local mirror and then from the remote
func deleteEntity[T models.SyncableEntity](ctx context.Context, e *SyncEngine, desc *entityDesc[T], id string) error {
	if id == "" {
		return fmt.Errorf("cannot delete %s without id", desc.entity)
	}

	e.cache.InvalidatePrefix(desc.entity)
	defer e.cache.InvalidatePrefix(desc.entity)

	if err := e.local.Delete(ctx, desc.table, id); err != nil {
		return fmt.Errorf("failed to delete %s %s locally: %w", desc.entity, id, err)
	}
	e.notify(desc.entity, id, OpDelete)

	if e.remote == nil {
		return nil
	}

	if err := e.pushDelete(ctx, desc.table, id); err != nil {
		e.log.Warn("⚠️  Remote delete failed, removed locally",
			zap.String("entity", string(desc.entity)), zap.String("id", id), zap.Error(err))
		e.markPending(ctx, desc.table, id, localstore.PendingDelete)
		return &RemoteWriteError{Entity: desc.entity, ID: id, Op: OpDelete, Err: err}
	}
	e.clearPending(ctx, desc.table, id)
	return nil
}

// pushSave upserts one canonical entity to the remote
func (e *SyncEngine) pushSave(ctx context.Context, desc tableDesc, canonical map[string]interface{}) error {
	row, err := desc.remoteRow(canonical)
	if err != nil {
		return err
	}
	return e.withRemoteTimeout(ctx, func(ctx context.Context) error {
		return e.remote.Upsert(ctx, string(desc.tableName()), row)
	})
}

func (e *SyncEngine) pushDelete(ctx context.Context, table localstore.Table, id string) error {
	return e.withRemoteTimeout(ctx, func(ctx context.Context) error {
		return e.remote.Delete(ctx, string(table), id)
	})
}

func (e *SyncEngine) markPending(ctx context.Context, table localstore.Table, id, op string) {
	if err := e.local.MarkPending(ctx, table, id, op); err != nil {
		e.log.Error("Failed to queue pending write", zap.String("table", string(table)), zap.String("id", id), zap.Error(err))
	}
}

func (e *SyncEngine) clearPending(ctx context.Context, table localstore.Table, id string) {
	if err := e.local.ClearPending(ctx, table, id); err != nil {
		e.log.Warn("⚠️  Failed to clear pending write", zap.String("table", string(table)), zap.String("id", id), zap.Error(err))
	}
}
