package submission

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
)

// State is a step of one submission.
type State int

// Submission states. Rejected, Succeeded and Failed are terminal.
const (
	StateIdle State = iota
	StateValidating
	StateRejected
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Identity reports who is signed in. *auth.Session satisfies it.
type Identity interface {
	CurrentUser() (*model.User, bool)
}

// Result is the outcome of one submission.
type Result struct {
	RecordID string
	State    State
	Shape    Shape
}

// Workflow submits transaction forms to the record store.
type Workflow struct {
	identity Identity
	store    service.RecordCreator
	logger   *slog.Logger
	now      func() time.Time
	observer func(State)
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock sets the clock used for blank dates.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithLogger sets the workflow logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

// WithObserver registers a callback invoked on every state change.
func WithObserver(fn func(State)) Option {
	return func(w *Workflow) { w.observer = fn }
}

// NewWorkflow creates a workflow for the signed-in identity.
func NewWorkflow(identity Identity, store service.RecordCreator, opts ...Option) *Workflow {
	w := &Workflow{
		identity: identity,
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = common.ComponentLogger(w.logger, "submission")
	return w
}

// Submit validates form and creates exactly one record for it. A rejected
// form never reaches the store, and a failed create is not retried.
//
// Errors are common.ErrNotAuthenticated, a *FieldError matching
// common.ErrInvalidInput, or a *common.StoreError carrying the store's
// message.
func (w *Workflow) Submit(ctx context.Context, form Form) (Result, error) {
	result := Result{State: StateIdle}
	w.transition(&result, StateValidating)

	user, ok := w.identity.CurrentUser()
	if !ok {
		w.transition(&result, StateRejected)
		return result, common.ErrNotAuthenticated
	}

	payload, err := Validate(form, user, w.now())
	if err != nil {
		w.transition(&result, StateRejected)
		w.logger.Debug("submission rejected", "user_id", user.ID, "error", err)
		return result, err
	}
	result.Shape = payload.Shape()

	w.transition(&result, StateSubmitting)
	id, err := payload.create(ctx, w.store)
	if err != nil {
		w.transition(&result, StateFailed)
		w.logger.Error("failed to create record", "user_id", user.ID, "shape", result.Shape, "error", err)
		return result, common.NewStoreError("create "+result.Shape.String(), err)
	}

	result.RecordID = id
	w.transition(&result, StateSucceeded)
	w.logger.Info("record created", "user_id", user.ID, "shape", result.Shape, "id", id)
	return result, nil
}

func (w *Workflow) transition(result *Result, next State) {
	result.State = next
	if w.observer != nil {
		w.observer(next)
	}
}
