package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

// ErrInvalidStep indicates the action is not reachable from the session's step.
var ErrInvalidStep = errors.New("action not allowed in current verification step")

// CooldownError is returned when a resend is attempted inside the cooldown window.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %ds", models.ErrResendCooldown, e.RetryAfterSeconds())
}

func (e *CooldownError) Unwrap() error {
	return models.ErrResendCooldown
}

// RetryAfterSeconds rounds the remaining cooldown up to whole seconds.
func (e *CooldownError) RetryAfterSeconds() int {
	return int((e.Remaining + time.Second - 1) / time.Second)
}

// Engine is the verification engine used by the flow.
type Engine interface {
	RequestCode(ctx context.Context, id, submittedEmail string) (Result, error)
	ResendCode(ctx context.Context, id string) (Result, error)
	VerifyCode(ctx context.Context, id, submitted string) error
}

// Flow drives one viewer through awaiting email -> awaiting code -> verified.
type Flow struct {
	engine   Engine
	sessions *SessionManager
	cooldown time.Duration
	now      func() time.Time
}

// NewFlow combines the engine with per-viewer session state.
func NewFlow(engine Engine, sessions *SessionManager, cooldown time.Duration) *Flow {
	return &Flow{
		engine:   engine,
		sessions: sessions,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// State returns the viewer's current session.
func (f *Flow) State(sessionID, invoiceID string) Session {
	return f.sessions.GetSession(sessionID, invoiceID)
}

// IsVerified reports whether the viewer passed verification for the invoice.
func (f *Flow) IsVerified(sessionID, invoiceID string) bool {
	return f.State(sessionID, invoiceID).Step == StepVerified
}

// SubmitEmail requests a code for the submitted address. A delivery failure
// still moves the session to the code step because the code was persisted,
// but does not start the resend cooldown.
func (f *Flow) SubmitEmail(ctx context.Context, sessionID, invoiceID, email string) (Result, error) {
	state := f.State(sessionID, invoiceID)
	if state.Step != StepAwaitingEmail {
		return Result{}, ErrInvalidStep
	}

	result, err := f.engine.RequestCode(ctx, invoiceID, email)
	switch {
	case err == nil:
		f.sessions.UpdateSession(sessionID, invoiceID, Session{Step: StepAwaitingCode, Email: email, LastSentAt: f.now()})
	case errors.Is(err, models.ErrDeliveryFailed):
		f.sessions.UpdateSession(sessionID, invoiceID, Session{Step: StepAwaitingCode, Email: email})
	}
	return result, err
}

// Resend issues a new code once the cooldown since the last send has elapsed.
func (f *Flow) Resend(ctx context.Context, sessionID, invoiceID string) (Result, error) {
	state := f.State(sessionID, invoiceID)
	if state.Step != StepAwaitingCode {
		return Result{}, ErrInvalidStep
	}

	if !state.LastSentAt.IsZero() {
		if elapsed := f.now().Sub(state.LastSentAt); elapsed < f.cooldown {
			return Result{}, &CooldownError{Remaining: f.cooldown - elapsed}
		}
	}

	result, err := f.engine.ResendCode(ctx, invoiceID)
	if err == nil {
		state.LastSentAt = f.now()
		f.sessions.UpdateSession(sessionID, invoiceID, state)
	}
	return result, err
}

// SubmitCode checks the entered code and marks the session verified on a match.
func (f *Flow) SubmitCode(ctx context.Context, sessionID, invoiceID, code string) error {
	state := f.State(sessionID, invoiceID)
	switch state.Step {
	case StepVerified:
		return nil
	case StepAwaitingCode:
	default:
		return ErrInvalidStep
	}

	if err := f.engine.VerifyCode(ctx, invoiceID, code); err != nil {
		return err
	}

	state.Step = StepVerified
	f.sessions.UpdateSession(sessionID, invoiceID, state)
	return nil
}

// ChangeEmail returns from the code step to the email step.
func (f *Flow) ChangeEmail(sessionID, invoiceID string) error {
	state := f.State(sessionID, invoiceID)
	switch state.Step {
	case StepAwaitingEmail:
		return nil
	case StepAwaitingCode:
		f.sessions.UpdateSession(sessionID, invoiceID, Session{Step: StepAwaitingEmail})
		return nil
	default:
		return ErrInvalidStep
	}
}

// Forget drops all viewer state of an invoice, e.g. after it was deleted.
func (f *Flow) Forget(invoiceID string) {
	f.sessions.ClearInvoice(invoiceID)
}
