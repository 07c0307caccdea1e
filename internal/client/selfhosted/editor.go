// Package selfhosted implements the self-hosted environment dialog: a
// working copy of models.SelfHostedConfig that is loaded from the store when
// the dialog opens, validated on every edit, and persisted as one record on
// save.
package selfhosted

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vanguard/internal/client/models"
	"github.com/dmitrijs2005/vanguard/internal/logging"
)

// State is the visibility of the dialog.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

var (
	ErrClosed = errors.New("self-hosted editor is closed")
	ErrBusy   = errors.New("self-hosted save in progress")
	ErrSave   = errors.New("self-hosted save failed")
)

// ValidationError is returned by Submit when at least one field is invalid.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f.String())
	}
	sort.Strings(names)
	return "invalid self-hosted fields: " + strings.Join(names, ", ")
}

// Store is the part of the typed store the editor needs.
type Store interface {
	SelfHosted(ctx context.Context) (models.SelfHostedConfig, bool, error)
	SetSelfHosted(ctx context.Context, c models.SelfHostedConfig) error
}

// SaveFunc is the host's save hook. It runs before the record is written; a
// non-nil error keeps the dialog open and nothing is persisted.
type SaveFunc func(ctx context.Context, c models.SelfHostedConfig) error

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithSaveFunc installs the host save hook.
func WithSaveFunc(fn SaveFunc) Option {
	return func(e *Editor) { e.onSave = fn }
}

// Editor is safe for concurrent use; at most one Submit runs at a time and
// Open/Cancel are rejected while it does.
type Editor struct {
	store  Store
	onSave SaveFunc
	log    logging.Logger

	mu         sync.Mutex
	state      State
	values     models.SelfHostedConfig
	shown      map[models.Field]bool
	errors     Errors
	submitting bool
}

// New returns a closed Editor persisting through store.
func New(store Store, opts ...Option) *Editor {
	e := &Editor{
		store:  store,
		log:    logging.Nop(),
		shown:  map[models.Field]bool{},
		errors: Errors{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Open loads the persisted record (or empty defaults) into the working copy
// and shows the dialog. Calling Open on an open dialog does nothing.
func (e *Editor) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitting {
		return ErrBusy
	}
	if e.state == Open {
		return nil
	}

	cfg, ok, err := e.store.SelfHosted(ctx)
	if err != nil {
		e.log.Warn(ctx, "self-hosted config unreadable, using defaults", "error", err)
		ok = false
	}
	if !ok {
		cfg = models.SelfHostedConfig{}
	}

	e.values = cfg
	e.shown = map[models.Field]bool{}
	e.errors = Errors{}
	e.state = Open
	e.log.Debug(ctx, "self-hosted editor opened", "persisted", ok)
	return nil
}

// Cancel discards the working copy and closes the dialog.
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitting {
		return ErrBusy
	}
	e.close()
	return nil
}

func (e *Editor) close() {
	e.state = Closed
	e.values = models.SelfHostedConfig{}
	e.shown = map[models.Field]bool{}
	e.errors = Errors{}
}

// SetField replaces the value of f and revalidates it.
func (e *Editor) SetField(f models.Field, value string) error {
	if _, ok := SpecFor(f); !ok {
		return fmt.Errorf("unknown self-hosted field %d", f)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Open {
		return ErrClosed
	}

	e.values = e.values.With(f, value)
	shown := make(map[models.Field]bool, len(e.shown)+1)
	for k, v := range e.shown {
		shown[k] = v
	}
	shown[f] = true
	e.shown = shown
	e.errors = compute(e.values, e.shown)
	return nil
}

// Submit validates all fields, runs the save hook and persists the trimmed
// record. On any failure the dialog stays open with the user's input intact.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.state != Open {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.submitting {
		e.mu.Unlock()
		return ErrBusy
	}

	shown := make(map[models.Field]bool, len(FieldSpecs))
	for _, s := range FieldSpecs {
		shown[s.Field] = true
	}
	e.shown = shown
	e.errors = compute(e.values, shown)
	if len(e.errors) > 0 {
		verr := &ValidationError{Fields: e.copyErrors()}
		e.mu.Unlock()
		return verr
	}

	cfg := e.values.Trimmed()
	e.submitting = true
	e.mu.Unlock()

	err := e.persist(ctx, cfg)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitting = false
	if err != nil {
		e.log.Warn(ctx, "self-hosted config not saved", "error", err)
		return err
	}
	e.close()
	e.log.Info(ctx, "self-hosted config saved", "server_url", cfg.ServerURL)
	return nil
}

func (e *Editor) persist(ctx context.Context, cfg models.SelfHostedConfig) error {
	if e.onSave != nil {
		if err := e.onSave(ctx, cfg); err != nil {
			return fmt.Errorf("%w: %w", ErrSave, err)
		}
	}
	return e.store.SetSelfHosted(ctx, cfg)
}

// State reports whether the dialog is open.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Values returns the working copy as typed so far.
func (e *Editor) Values() models.SelfHostedConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values
}

// Errors returns a copy of the current error map.
func (e *Editor) Errors() Errors {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyErrors()
}

func (e *Editor) copyErrors() Errors {
	out := make(Errors, len(e.errors))
	for k, v := range e.errors {
		out[k] = v
	}
	return out
}

// IsSubmitting reports whether a save is in flight.
func (e *Editor) IsSubmitting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitting
}
