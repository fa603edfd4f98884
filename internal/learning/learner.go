// Package learning records scored PRs into the team corpus without
// blocking or failing the scoring path.
package learning

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/gh-riskradar/internal/logging"
	"github.com/Kavirubc/gh-riskradar/internal/vectorize"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// ErrClosed is returned by Flush after Close
var ErrClosed = errors.New("team learner closed")

// Appender persists one team document
type Appender interface {
	AppendTeam(ctx context.Context, doc models.Document) error
}

// item is either a document to append or a flush barrier
type item struct {
	seq     uint64
	doc     models.Document
	barrier chan struct{}
}

type pendingDoc struct {
	seq uint64
	doc models.Document
}

// TeamLearner appends scored PRs to the team corpus from a single writer
// goroutine, so appends from one process never overwrite each other.
type TeamLearner struct {
	store   Appender
	vec     *vectorize.Vectorizer
	logger  *zap.Logger
	now     func() time.Time
	timeout time.Duration

	queue chan item
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	// pending holds queued documents, oldest first, until their append
	// has been attempted
	pendingMu sync.Mutex
	pending   []pendingDoc
	seq       uint64
}

// NewTeamLearner starts the writer goroutine. Call Close to stop it.
func NewTeamLearner(store Appender, vec *vectorize.Vectorizer, queueSize int, logger *zap.Logger) *TeamLearner {
	if queueSize < 1 {
		queueSize = 64
	}
	l := &TeamLearner{
		store:   store,
		vec:     vec,
		logger:  logging.OrNop(logger),
		now:     time.Now,
		timeout: 10 * time.Second,
		queue:   make(chan item, queueSize),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// Record queues pr for the team corpus. It never blocks: when the queue is
// full or the learner is closed the PR is dropped with a warning. A queued
// document is returned by Pending until its append has been attempted.
func (l *TeamLearner) Record(pr models.PRRecord) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		TeamAppends.WithLabelValues("dropped").Inc()
		l.logger.Warn("team learner closed, dropping record", zap.String("title", pr.Title))
		return
	}

	doc := NewTeamDocument(pr, l.vec, l.now())

	l.pendingMu.Lock()
	defer l.pendingMu.Unlock()

	l.seq++
	it := item{seq: l.seq, doc: doc}
	select {
	case l.queue <- it:
		l.pending = append(l.pending, pendingDoc{seq: it.seq, doc: doc})
	default:
		TeamAppends.WithLabelValues("dropped").Inc()
		l.logger.Warn("team learning queue full, dropping record",
			zap.String("title", pr.Title), zap.Int("queue_size", cap(l.queue)))
	}
}

// Pending returns the queued documents whose append has not finished,
// oldest first
func (l *TeamLearner) Pending() []models.Document {
	l.pendingMu.Lock()
	defer l.pendingMu.Unlock()

	docs := make([]models.Document, len(l.pending))
	for i, p := range l.pending {
		docs[i] = p.doc
	}
	return docs
}

func (l *TeamLearner) settle(seq uint64) {
	l.pendingMu.Lock()
	defer l.pendingMu.Unlock()

	for i, p := range l.pending {
		if p.seq == seq {
			l.pending = append(l.pending[:i:i], l.pending[i+1:]...)
			return
		}
	}
}

// Flush waits until every record queued before the call has been written
// (or failed).
func (l *TeamLearner) Flush(ctx context.Context) error {
	barrier := make(chan struct{})

	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrClosed
	}
	select {
	case l.queue <- item{barrier: barrier}:
		l.mu.RUnlock()
	case <-ctx.Done():
		l.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the writer goroutine
func (l *TeamLearner) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *TeamLearner) run() {
	defer close(l.done)
	for it := range l.queue {
		if it.barrier != nil {
			close(it.barrier)
			continue
		}
		l.append(it.doc)
		l.settle(it.seq)
	}
}

// append writes one team document; failures are logged and counted only
func (l *TeamLearner) append(doc models.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	if err := l.store.AppendTeam(ctx, doc); err != nil {
		TeamAppends.WithLabelValues("error").Inc()
		l.logger.Warn("team append failed",
			zap.String("source_id", doc.SourceID), zap.Error(err))
		return
	}

	TeamAppends.WithLabelValues("success").Inc()
	l.logger.Debug("team document recorded", zap.String("source_id", doc.SourceID))
}

// NewTeamDocument builds the unlabeled team document for pr
func NewTeamDocument(pr models.PRRecord, vec *vectorize.Vectorizer, now time.Time) models.Document {
	return models.Document{
		SourceID:   "team-" + models.PRUUID(pr),
		Record:     pr,
		Vector:     vec.Vectorize(pr.Text()),
		Label:      models.LabelUnlabeled,
		Origin:     models.OriginTeam,
		RecordedAt: now.UTC(),
	}
}
