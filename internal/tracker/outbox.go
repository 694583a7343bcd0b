package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/tally/internal/store"
)

const (
	opTimeout   = 10 * time.Second
	maxFailures = 100
)

type opKind int

const (
	opUpsertSettings opKind = iota
	opInsertEntry
	opUpdateEntry
	opDeleteEntry
)

func (k opKind) String() string {
	switch k {
	case opUpsertSettings:
		return "upsert_settings"
	case opInsertEntry:
		return "insert_entry"
	case opUpdateEntry:
		return "update_entry"
	case opDeleteEntry:
		return "delete_entry"
	}
	return fmt.Sprintf("op(%d)", int(k))
}

// writeOp is one queued gateway call.
type writeOp struct {
	kind  opKind
	entry store.TimeEntry
	id    string
	patch store.SettingsPatch
}

func upsertSettings(p store.SettingsPatch) writeOp { return writeOp{kind: opUpsertSettings, patch: p} }
func insertEntry(e store.TimeEntry) writeOp       { return writeOp{kind: opInsertEntry, entry: e, id: e.ID} }
func updateEntry(e store.TimeEntry) writeOp       { return writeOp{kind: opUpdateEntry, entry: e, id: e.ID} }
func deleteEntry(id string) writeOp               { return writeOp{kind: opDeleteEntry, id: id} }

// WriteFailure records a gateway call that failed. Failed writes are not retried.
type WriteFailure struct {
	Op      string
	EntryID string
	Err     error
	At      time.Time
}

// Outbox is the outbound write log. Mutations push ops without waiting; a
// single goroutine applies them to the gateway in push order.
type Outbox struct {
	gw     store.Gateway
	userID string
	log    *slog.Logger

	mu       sync.Mutex
	queue    []writeOp
	closed   bool
	applied  int
	failures []WriteFailure

	wake chan struct{}
	done chan struct{}
}

func newOutbox(gw store.Gateway, userID string, log *slog.Logger) *Outbox {
	return &Outbox{
		gw:     gw,
		userID: userID,
		log:    log,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push enqueues ops. It never blocks; ops pushed after close are dropped.
func (o *Outbox) push(ops ...writeOp) {
	if len(ops) == 0 {
		return
	}
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.log.Warn("outbox closed, dropping writes", slog.Int("count", len(ops)))
		return
	}
	o.queue = append(o.queue, ops...)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// run drains the queue until the outbox is closed and empty or ctx is done.
func (o *Outbox) run(ctx context.Context) {
	defer close(o.done)
	for {
		o.mu.Lock()
		if len(o.queue) == 0 {
			closed := o.closed
			o.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-o.wake:
				continue
			case <-ctx.Done():
				return
			}
		}
		op := o.queue[0]
		o.queue[0] = writeOp{}
		o.queue = o.queue[1:]
		o.mu.Unlock()

		o.apply(ctx, op)
	}
}

func (o *Outbox) apply(ctx context.Context, op writeOp) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var err error
	switch op.kind {
	case opUpsertSettings:
		err = o.gw.UpsertSettings(ctx, o.userID, op.patch)
	case opInsertEntry:
		err = o.gw.InsertEntry(ctx, op.entry)
	case opUpdateEntry:
		err = o.gw.UpdateEntry(ctx, op.entry)
	case opDeleteEntry:
		err = o.gw.DeleteEntry(ctx, o.userID, op.id)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if err == nil {
		o.applied++
		return
	}
	o.log.Error("persist failed",
		slog.String("op", op.kind.String()),
		slog.String("entry", op.id),
		slog.String("error", err.Error()),
	)
	o.failures = append(o.failures, WriteFailure{Op: op.kind.String(), EntryID: op.id, Err: err, At: time.Now()})
	if len(o.failures) > maxFailures {
		o.failures = o.failures[len(o.failures)-maxFailures:]
	}
}

// close stops accepting writes and waits until queued ones have been applied.
func (o *Outbox) close() {
	o.mu.Lock()
	already := o.closed
	o.closed = true
	o.mu.Unlock()
	if !already {
		select {
		case o.wake <- struct{}{}:
		default:
		}
	}
	<-o.done
}

func (o *Outbox) pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *Outbox) stats() (applied int, failures []WriteFailure) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.applied, append([]WriteFailure(nil), o.failures...)
}
