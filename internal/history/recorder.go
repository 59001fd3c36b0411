package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// Sink receives every finalized call. Sinks are best effort and own
// their error handling; a failing sink never fails the invocation.
type Sink interface {
	SaveCall(ctx context.Context, call *models.Call) error
}

// Recorder holds the append-only audit trail of guard invocations.
// Each call is exclusively owned by its in-flight invocation until
// finalized; the recorder's lock only guards the call list itself, so
// concurrent invocations never contend on each other's iterations.
type Recorder struct {
	mu    sync.RWMutex
	calls []*models.Call
	sink  Sink
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// StartCall opens a new call record and returns its handle.
func (r *Recorder) StartCall(inputs models.CallInputs) *models.Call {
	call := &models.Call{
		ID:        uuid.NewString(),
		Inputs:    inputs,
		Timestamp: time.Now(),
	}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	return call
}

// RecordIteration appends one attempt to a call. Past iterations are
// never mutated.
func (r *Recorder) RecordIteration(call *models.Call, iteration models.Iteration) {
	call.Attempts = append(call.Attempts, iteration)
}

// SetSink attaches a durable destination for finalized calls. Must be
// called before the first invocation.
func (r *Recorder) SetSink(sink Sink) {
	r.sink = sink
}

// Finalize sets the call's outcome. The record is immutable once the
// invocation returns.
func (r *Recorder) Finalize(call *models.Call, outcome models.ValidationOutcome) {
	call.Outcome = &outcome
	if r.sink != nil {
		// The invocation's context may already be done; archiving
		// still has to happen.
		_ = r.sink.SaveCall(context.Background(), call)
	}
}

// Calls returns a snapshot of the recorded calls for read-only
// observability access.
func (r *Recorder) Calls() []*models.Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Call looks up a call by id.
func (r *Recorder) Call(id string) (*models.Call, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.calls {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
