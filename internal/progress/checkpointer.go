// checkpointer.go — rate-limited persistence of playback position.
//
// The checkpointer sits between the playback controller's position stream and
// the progress store. It writes at most one checkpoint per 10 seconds of
// playhead movement, fire-and-forget — a failed write is simply retried by the
// next qualifying update. Anonymous sessions (empty user ID) never write.
package progress

import (
	"context"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourflock/perch/internal/metrics"
	"github.com/yourflock/perch/pkg/telemetry"
)

const (
	// saveDeltaSeconds is the minimum playhead movement between checkpoint
	// writes. Updates inside the window are dropped, not queued.
	saveDeltaSeconds = 10.0

	// resumeGateSeconds is the minimum saved position for which a
	// resume/restart prompt is offered on session start.
	resumeGateSeconds = 30
)

// ResumePrompt is the resume/restart decision surfaced on session start.
type ResumePrompt struct {
	Offered         bool `json:"offered"`
	PositionSeconds int  `json:"position_seconds"`
}

// PromptFor derives the resume/restart decision from a stored record.
// Offered only when progress is beyond the resume gate and the content was
// not already completed; a nil record never prompts.
func PromptFor(rec *Record) ResumePrompt {
	if rec == nil || rec.Completed || rec.ProgressSeconds <= resumeGateSeconds {
		return ResumePrompt{}
	}
	return ResumePrompt{Offered: true, PositionSeconds: rec.ProgressSeconds}
}

// Options configures a Checkpointer for one playback session.
type Options struct {
	Store     Store
	UserID    string // empty for anonymous sessions
	ContentID string
	Logger    *logrus.Logger
}

// Checkpointer tracks a single (viewer, content unit) pair for the lifetime of
// one playback session. Create a new one per session; it is not reusable
// across content units.
type Checkpointer struct {
	store     Store
	userID    string
	contentID string
	log       *logrus.Logger

	mu          sync.Mutex
	lastSaved   float64
	promptPos   int
	completed   bool
	errReported bool

	// Writes are serialized through a single in-flight writer goroutine.
	// A position that qualifies while a write is in flight is coalesced
	// into pending rather than racing a second goroutine.
	writing    bool
	pending    float64
	hasPending bool
}

func New(opts Options) *Checkpointer {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Checkpointer{
		store:     opts.Store,
		userID:    opts.UserID,
		contentID: opts.ContentID,
		log:       log,
	}
}

// Begin loads any prior record and returns the resume/restart decision.
// A prompt is offered only when a record exists with progress beyond the
// resume gate and the content was not already completed. Anonymous sessions
// never prompt.
func (c *Checkpointer) Begin(ctx context.Context) (ResumePrompt, error) {
	if c.store == nil || c.userID == "" {
		return ResumePrompt{}, nil
	}
	rec, err := c.store.Get(ctx, c.userID, c.contentID)
	if err != nil {
		return ResumePrompt{}, err
	}
	if rec == nil {
		return ResumePrompt{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Seed the rate limiter with the stored position so resuming does not
	// immediately rewrite the same checkpoint.
	c.lastSaved = float64(rec.ProgressSeconds)
	prompt := PromptFor(rec)
	if prompt.Offered {
		c.promptPos = prompt.PositionSeconds
	}
	return prompt, nil
}

// Resolve applies the viewer's resume/restart choice and returns the position
// playback should start from. Restart clears the stored record to zero.
func (c *Checkpointer) Resolve(resume bool) float64 {
	c.mu.Lock()
	pos := c.promptPos
	if !resume {
		c.lastSaved = 0
		if c.store != nil && c.userID != "" {
			c.enqueueLocked(0, 0)
		}
	}
	c.mu.Unlock()

	if resume {
		return float64(pos)
	}
	return 0
}

// Observe receives a position update from the playback controller. The update
// is persisted only when the playhead has moved at least saveDeltaSeconds
// since the last successful or in-flight write; otherwise it is dropped.
func (c *Checkpointer) Observe(positionSeconds float64) {
	if c.store == nil || c.userID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completed || math.Abs(positionSeconds-c.lastSaved) < saveDeltaSeconds {
		return
	}
	prev := c.lastSaved
	// Advance the gate before the write lands so a burst of updates inside
	// the window produces exactly one in-flight write.
	c.lastSaved = positionSeconds
	c.enqueueLocked(positionSeconds, prev)
}

// enqueueLocked hands a position to the session's writer goroutine, starting
// one when none is in flight. Caller holds mu.
func (c *Checkpointer) enqueueLocked(positionSeconds, prev float64) {
	if c.writing {
		c.pending = positionSeconds
		c.hasPending = true
		return
	}
	c.writing = true
	go c.flush(positionSeconds, prev)
}

// flush is the session's only writer goroutine. It commits positionSeconds,
// then drains whatever position arrived while that write was in flight, so
// checkpoints land in Observe order and an earlier position can never
// overwrite a later one.
func (c *Checkpointer) flush(positionSeconds, prev float64) {
	for {
		c.mu.Lock()
		if c.completed {
			// Completion is the session's final checkpoint; drop the rest.
			c.writing = false
			c.hasPending = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		err := c.upsert(positionSeconds, false)

		c.mu.Lock()
		if err != nil && !c.hasPending && c.lastSaved == positionSeconds {
			// Roll the gate back so the next qualifying update retries.
			c.lastSaved = prev
		}
		if !c.hasPending {
			c.writing = false
			c.mu.Unlock()
			return
		}
		next := c.pending
		c.hasPending = false
		if err == nil {
			prev = positionSeconds
		}
		c.mu.Unlock()
		positionSeconds = next
	}
}

// MarkCompleted records the content unit as finished at the given position.
// The write is synchronous — completion is the session's final checkpoint and
// later Observe calls are dropped.
func (c *Checkpointer) MarkCompleted(ctx context.Context, positionSeconds float64) error {
	if c.store == nil || c.userID == "" {
		return nil
	}

	c.mu.Lock()
	c.completed = true
	c.lastSaved = positionSeconds
	c.mu.Unlock()

	if err := c.store.Upsert(ctx, c.userID, c.contentID, int(positionSeconds), true); err != nil {
		metrics.CheckpointWrites.WithLabelValues("error").Inc()
		c.reportError(err)
		return err
	}
	metrics.CheckpointWrites.WithLabelValues("ok").Inc()
	return nil
}

// upsert captures the session identity into the call so a write still in
// flight when the caller moves to a new content unit cannot land on the
// wrong record.
func (c *Checkpointer) upsert(positionSeconds float64, completed bool) error {
	userID, contentID := c.userID, c.contentID

	err := c.store.Upsert(context.Background(), userID, contentID, int(positionSeconds), completed)
	if err != nil {
		metrics.CheckpointWrites.WithLabelValues("error").Inc()
		c.log.WithFields(logrus.Fields{
			"user_id":    userID,
			"content_id": contentID,
			"position":   int(positionSeconds),
		}).WithError(err).Warn("checkpoint write failed")
		c.reportError(err)
		return err
	}
	metrics.CheckpointWrites.WithLabelValues("ok").Inc()
	return nil
}

// reportError captures the first store failure of the session to Sentry.
// Repeated failures only log — one event per session is enough signal.
func (c *Checkpointer) reportError(err error) {
	c.mu.Lock()
	already := c.errReported
	c.errReported = true
	c.mu.Unlock()
	if already {
		return
	}
	telemetry.CaptureError(err, map[string]string{
		"operation":  "checkpoint",
		"content_id": c.contentID,
	})
}
