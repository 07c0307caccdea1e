// Package accesshost tracks which identity provider the flow talks to and
// turns the persisted choice into concrete service endpoints.
package accesshost

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vanguard/internal/client/models"
	"github.com/dmitrijs2005/vanguard/internal/logging"
)

// HostStore is the part of the typed store the selector needs.
type HostStore interface {
	ServerHost(ctx context.Context) (models.AccessHost, bool, error)
	SetServerHost(ctx context.Context, h models.AccessHost) error
}

// EditorOpener opens the self-hosted dialog; *selfhosted.Editor satisfies it.
type EditorOpener interface {
	Open(ctx context.Context) error
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Selector) { s.log = l }
}

// WithOnChange registers the host component's notification callback.
func WithOnChange(fn func(models.AccessHost)) Option {
	return func(s *Selector) { s.onChange = fn }
}

// Selector holds the chosen access host and persists every change.
type Selector struct {
	store    HostStore
	editor   EditorOpener
	onChange func(models.AccessHost)
	log      logging.Logger

	mu   sync.Mutex
	host models.AccessHost
}

// New returns a selector showing models.DefaultHost. Call Load to pick up
// the persisted choice.
func New(store HostStore, editor EditorOpener, opts ...Option) *Selector {
	s := &Selector{
		store:  store,
		editor: editor,
		log:    logging.Nop(),
		host:   models.DefaultHost,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load initializes the selection from the store. Missing, unreadable or
// unknown values fall back to models.DefaultHost.
func (s *Selector) Load(ctx context.Context) models.AccessHost {
	h, ok, err := s.store.ServerHost(ctx)
	switch {
	case err != nil:
		s.log.Warn(ctx, "server host unreadable, using default", "error", err)
		h = models.DefaultHost
	case !ok:
		h = models.DefaultHost
	case !h.Valid():
		s.log.Warn(ctx, "unknown server host in store, using default", "host", string(h))
		h = models.DefaultHost
	}

	s.mu.Lock()
	s.host = h
	s.mu.Unlock()
	return h
}

// Host returns the current selection.
func (s *Selector) Host() models.AccessHost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host
}

// Select persists value, makes it current, notifies the host component and,
// for HostSelfHosted, opens the self-hosted dialog. Values outside the
// enumeration are ignored. When the write fails nothing else happens.
func (s *Selector) Select(ctx context.Context, value string) error {
	h, ok := models.ParseAccessHost(value)
	if !ok {
		s.log.Debug(ctx, "ignoring unknown host selection", "value", value)
		return nil
	}

	s.mu.Lock()
	if err := s.store.SetServerHost(ctx, h); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist server host: %w", err)
	}
	s.host = h
	s.mu.Unlock()
	s.log.Info(ctx, "access host selected", "host", string(h))

	if s.onChange != nil {
		s.onChange(h)
	}
	if h == models.HostSelfHosted && s.editor != nil {
		if err := s.editor.Open(ctx); err != nil {
			return fmt.Errorf("open self-hosted editor: %w", err)
		}
	}
	return nil
}
