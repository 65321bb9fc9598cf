package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Logger receives the bridge's log lines.
// Logf lines are always kept, Debugf lines only in debug mode.
type Logger interface {
	Logf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// SubmissionContext holds the state of one submission while it is handled.
// It is created by Bridge.HandleSubmission and never shared between submissions.
type SubmissionContext struct {
	ID      string
	Fields  FieldMapping
	Source  Source
	Company RemoteRef
	// Contact is nil when contact resolution failed or was skipped.
	Contact *RemoteRef
	Job     RemoteRef
	Lines   []string

	ctx       context.Context
	store     LogStore
	debugMode bool
}

// NewSubmissionContext starts a submission, log lines are appended to store.
func NewSubmissionContext(ctx context.Context, store LogStore, debugMode bool) *SubmissionContext {
	return &SubmissionContext{
		ID:        uuid.New().String(),
		ctx:       ctx,
		store:     store,
		debugMode: debugMode,
	}
}

// SetFields stores the normalised fields and the path view over them.
func (sc *SubmissionContext) SetFields(fields FieldMapping) {
	sc.Fields = fields
	sc.Source = fields.Source()
}

func (sc *SubmissionContext) Logf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	sc.Lines = append(sc.Lines, line)
	if sc.store == nil {
		return
	}
	ctx := sc.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// the submission context may already be cancelled, the log line is still wanted
	if err := sc.store.Append(context.WithoutCancel(ctx), fmt.Sprintf("[%s] %s", sc.shortID(), line)); err != nil {
		log.Printf("Warning: failed to append to debug log: %v", err)
	}
}

func (sc *SubmissionContext) Debugf(format string, args ...interface{}) {
	if sc.debugMode {
		sc.Logf(format, args...)
	}
}

func (sc *SubmissionContext) shortID() string {
	if len(sc.ID) > 8 {
		return sc.ID[:8]
	}
	return sc.ID
}
