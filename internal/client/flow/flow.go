package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vanguard/internal/client/validate"
	"github.com/dmitrijs2005/vanguard/internal/logging"
	"github.com/dmitrijs2005/vanguard/internal/memx"
)

// Step is the screen currently shown.
type Step string

const (
	StepLogin       Step = "login"
	StepRegister    Step = "register"
	StepWelcomeBack Step = "welcome-back"
)

// State is the machine's own state: the step and the email carried into
// welcome-back. Email is empty on the other steps.
type State struct {
	Step  Step
	Email string
}

// LoginDraft is the login form.
type LoginDraft struct {
	Email         string
	RememberEmail bool
}

// RegisterDraft is the register form.
type RegisterDraft struct {
	Email string
	Name  string
}

// EmailStore persists the remembered email.
type EmailStore interface {
	Email(ctx context.Context) (string, bool, error)
	SetEmail(ctx context.Context, email string) error
	DeleteEmail(ctx context.Context) error
}

// Handlers are the external collaborators. Nil handlers succeed without
// doing anything.
type Handlers struct {
	// SSO starts single sign-on for the login draft.
	SSO func(ctx context.Context, d LoginDraft) error
	// Register creates an account.
	Register func(ctx context.Context, d RegisterDraft) error
	// DeviceLogin asks another device to approve the login of email.
	DeviceLogin func(ctx context.Context, email string) error
	// Continue authenticates email with the master password and takes the
	// user past the onboarding flow.
	Continue func(ctx context.Context, email string, password []byte) error
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithOnChange is called after every step transition, outside the
// machine's lock.
func WithOnChange(fn func(State)) Option {
	return func(m *Machine) { m.onChange = fn }
}

// Machine drives the login, register and welcome-back steps. It is safe
// for concurrent use.
type Machine struct {
	store    EmailStore
	handlers Handlers
	log      logging.Logger
	onChange func(State)

	mu         sync.Mutex
	state      State
	login      LoginDraft
	register   RegisterDraft
	password   []byte
	showPass   bool
	shown      map[Field]bool
	errors     Errors
	submitting bool
	pending    *State
}

// New returns a Machine on the login step. Call Start to pre-fill the
// remembered email.
func New(store EmailStore, h Handlers, opts ...Option) *Machine {
	m := &Machine{
		store:    store,
		handlers: h,
		log:      logging.Nop(),
		state:    State{Step: StepLogin},
		shown:    map[Field]bool{},
		errors:   Errors{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start shows the login step with the remembered email pre-filled.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlock()
	if m.submitting {
		return ErrBusy
	}
	m.enterLogin(ctx)
	return nil
}

// State returns the current step and the email carried into it.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Errors returns the field errors of the current form.
func (m *Machine) Errors() Errors {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors.clone()
}

// IsSubmitting reports whether a collaborator call is in flight.
func (m *Machine) IsSubmitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}

// transition must be called with mu held.
func (m *Machine) transition(ctx context.Context, s State) {
	from := m.state.Step
	m.state = s
	m.shown = map[Field]bool{}
	m.errors = Errors{}
	m.log.Debug(ctx, "flow transition", "from", string(from), "to", string(s.Step))
	m.pending = &s
}

// unlock releases mu and then reports a pending transition.
func (m *Machine) unlock() {
	p := m.pending
	m.pending = nil
	m.mu.Unlock()
	if p != nil && m.onChange != nil {
		m.onChange(*p)
	}
}

// enterLogin resets the login form and pre-fills the remembered email. A
// store read failure leaves the form empty.
func (m *Machine) enterLogin(ctx context.Context) {
	m.wipePassword()
	m.login = LoginDraft{}
	email, ok, err := m.store.Email(ctx)
	switch {
	case err != nil:
		m.log.Warn(ctx, "remembered email unreadable", "error", err)
	case ok && email != "":
		m.login = LoginDraft{Email: email, RememberEmail: true}
	}
	m.transition(ctx, State{Step: StepLogin})
}

func (m *Machine) wipePassword() {
	memx.Wipe(m.password)
	m.password = nil
	m.showPass = false
}

// require checks the step and the busy flag. mu must be held.
func (m *Machine) require(step Step) error {
	if m.submitting {
		return ErrBusy
	}
	if m.state.Step != step {
		return fmt.Errorf("%w: %s", ErrWrongStep, m.state.Step)
	}
	return nil
}

// validateInto marks fields as shown, recomputes the error map from scratch
// and returns a ValidationError when any field fails. mu must be held.
func (m *Machine) validateInto(fields ...Field) error {
	shown := make(map[Field]bool, len(m.shown)+len(fields))
	for k, v := range m.shown {
		shown[k] = v
	}
	for _, f := range fields {
		shown[f] = true
	}
	m.shown = shown
	m.errors = m.compute()

	failed := Errors{}
	for _, f := range fields {
		if msg, ok := m.errors[f]; ok {
			failed[f] = msg
		}
	}
	if len(failed) > 0 {
		return &ValidationError{Fields: failed}
	}
	return nil
}

func (m *Machine) compute() Errors {
	errs := Errors{}
	check := func(f Field, r validate.Result) {
		if m.shown[f] && !r.Valid() {
			errs[f] = r.Message
		}
	}
	switch m.state.Step {
	case StepLogin:
		check(FieldEmail, validate.Email(m.login.Email))
	case StepRegister:
		check(FieldEmail, validate.Email(m.register.Email))
	case StepWelcomeBack:
		check(FieldMasterPassword, validate.Required("Master password", string(m.password)))
	}
	return errs
}

// begin marks a submission as running and releases mu; finish re-acquires it.
func (m *Machine) begin() {
	m.submitting = true
	m.mu.Unlock()
}

func (m *Machine) finish() {
	m.mu.Lock()
	m.submitting = false
}

func collaboratorErr(name string, err error) error {
	return fmt.Errorf("%s: %w: %w", name, ErrCollaborator, err)
}
