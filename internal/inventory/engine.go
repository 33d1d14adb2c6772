// Package inventory owns the inventory document and every operation that
// changes it. Each mutation works on a clone, rebuilds the indices and
// publishes document and indices together as one Snapshot.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go-portmap/internal/db"
	"go-portmap/internal/history"
	"go-portmap/internal/index"
	"go-portmap/internal/metrics"
	"go-portmap/internal/migrate"
	"go-portmap/internal/models"
	"go-portmap/internal/seed"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Snapshot pairs a document with the indices built from it.
type Snapshot struct {
	Doc   *models.Document
	Index *index.Indices
}

// Sink receives the serialized document after every mutation.
type Sink interface {
	Enqueue(data []byte)
}

type Options struct {
	Now     func() int64
	NewID   func(prefix string) string
	Sink    Sink
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Seed    seed.Func
}

type Engine struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]

	now   func() int64
	newID func(prefix string) string
	sink  Sink
	m     *metrics.Metrics
	log   *zap.Logger
	seed  seed.Func
}

func nowMillis() int64 { return time.Now().UnixMilli() }

func newUUID(prefix string) string { return prefix + "-" + uuid.NewString() }

// New starts an engine on doc. A nil doc starts from the seed dataset.
func New(doc *models.Document, opts Options) *Engine {
	e := &Engine{
		now:   opts.Now,
		newID: opts.NewID,
		sink:  opts.Sink,
		m:     opts.Metrics,
		log:   opts.Logger,
		seed:  opts.Seed,
	}
	if e.now == nil {
		e.now = nowMillis
	}
	if e.newID == nil {
		e.newID = newUUID
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.seed == nil {
		e.seed = seed.Default
	}
	if doc == nil {
		doc = e.seed(e.now())
	} else {
		doc = doc.Clone()
	}
	migrate.Backfill(doc, e.now())
	e.install(doc)
	return e
}

// Boot loads the stored document under key. Any failure to read or decode
// it is logged and the engine starts from the seed instead.
func Boot(ctx context.Context, kv db.KV, key string, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = nowMillis
	}

	data, err := kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrNotFound):
		log.Info("no stored document, starting from seed", zap.String("key", key))
		return New(nil, opts)
	case err != nil:
		log.Warn("failed to load document, starting from seed", zap.String("key", key), zap.Error(err))
		return New(nil, opts)
	}

	doc, err := migrate.Decode(data, now())
	if err != nil {
		log.Warn("stored document is malformed, starting from seed", zap.String("key", key), zap.Error(err))
		return New(nil, opts)
	}
	log.Info("document loaded",
		zap.String("key", key),
		zap.Int("connections", len(doc.Connections)),
		zap.Int("wall_ports", len(doc.WallPorts)),
	)
	return New(doc, opts)
}

// Snapshot returns the current document and its indices. Callers must not
// modify either.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

func (e *Engine) install(doc *models.Document) {
	e.snap.Store(&Snapshot{Doc: doc, Index: index.Build(doc)})
	e.m.SetEntities(map[string]int{
		"floors":      len(doc.Floors),
		"wallPorts":   len(doc.WallPorts),
		"switches":    len(doc.Switches),
		"connections": len(doc.Connections),
		"users":       len(doc.Users),
		"activityLog": len(doc.ActivityLog),
	})
}

// txn is the working state of one mutation.
type txn struct {
	doc   *models.Document
	prev  *Snapshot
	now   int64
	newID func(prefix string) string
}

func (t *txn) activity(kind, message string, metadata map[string]any) {
	entry := models.ActivityEntry{
		ID:        t.newID("log"),
		Timestamp: t.now,
		Message:   message,
		Type:      kind,
		Metadata:  metadata,
	}
	t.doc.ActivityLog = history.Prepend(t.doc.ActivityLog, entry, models.MaxActivityLog)
}

func (t *txn) portEvent(ev models.SwitchPortEvent) {
	ev.ID = t.newID("sph")
	ev.Timestamp = t.now
	t.doc.SwitchPortHistory = history.Prepend(t.doc.SwitchPortHistory, ev, models.MaxSwitchPortHistory)
}

// mutate runs fn against a clone of the current document. On success the
// clone is published and queued for persistence; on error nothing changes.
func (e *Engine) mutate(op string, fn func(t *txn) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.snap.Load()
	t := &txn{doc: cur.Doc.Clone(), prev: cur, now: e.now(), newID: e.newID}
	err := fn(t)
	e.m.ObserveMutation(op, err)
	if err != nil {
		e.log.Debug("mutation rejected", zap.String("op", op), zap.Error(err))
		return err
	}

	e.install(t.doc)
	e.persist(t.doc)
	return nil
}

func (e *Engine) persist(doc *models.Document) {
	if e.sink == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		e.log.Error("failed to serialize document", zap.Error(err))
		return
	}
	e.sink.Enqueue(data)
}

// Export writes the whole document as indented JSON.
func (e *Engine) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e.Snapshot().Doc)
}

// Import replaces the document with the one read from r, after migration.
// Malformed input leaves the current document untouched.
func (e *Engine) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	err = e.mutate("import", func(t *txn) error {
		doc, err := migrate.Decode(data, t.now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		t.doc = doc
		return nil
	})
	if err != nil {
		e.log.Warn("import rejected", zap.Error(err))
	}
	return err
}

// Reset discards the document and starts over from the seed dataset.
func (e *Engine) Reset() error {
	return e.mutate("reset", func(t *txn) error {
		t.doc = e.seed(t.now)
		migrate.Backfill(t.doc, t.now)
		return nil
	})
}

// FeedItem is one row of the merged change feed.
type FeedItem struct {
	Source         string            `json:"source"` // "general" or "switch_port"
	ID             string            `json:"id"`
	Timestamp      int64             `json:"timestamp"`
	Message        string            `json:"message"`
	Type           string            `json:"type,omitempty"`
	Action         models.PortAction `json:"action,omitempty"`
	SwitchName     string            `json:"switchName,omitempty"`
	PortNumber     int               `json:"portNumber,omitempty"`
	UserName       string            `json:"userName,omitempty"`
	WallPortNumber string            `json:"wallPortNumber,omitempty"`
}

// Activity merges the activity log and the switch port history, newest first.
func (e *Engine) Activity() []FeedItem {
	s := e.Snapshot()
	items := make([]FeedItem, 0, len(s.Doc.ActivityLog)+len(s.Doc.SwitchPortHistory))
	for _, a := range s.Doc.ActivityLog {
		items = append(items, FeedItem{Source: "general", ID: a.ID, Timestamp: a.Timestamp, Message: a.Message, Type: a.Type})
	}
	for _, h := range s.Doc.SwitchPortHistory {
		item := FeedItem{
			Source:     "switch_port",
			ID:         h.ID,
			Timestamp:  h.Timestamp,
			Message:    h.Details,
			Action:     h.Action,
			SwitchName: "Unknown Switch",
			PortNumber: h.PortNumber,
		}
		if sw, ok := s.Index.Switches[h.SwitchID]; ok {
			item.SwitchName = sw.Name
		}
		if u, ok := s.Index.Users[h.UserID]; ok {
			item.UserName = u.Name
		}
		if p, ok := s.Index.WallPorts[h.WallPortID]; ok {
			item.WallPortNumber = p.PortNumber
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp > items[j].Timestamp })
	return items
}
