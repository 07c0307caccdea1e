package flow

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vanguard/internal/logging"
)

// Login returns the login draft.
func (m *Machine) Login() LoginDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.login
}

// SetLoginEmail updates the email field of the login form and revalidates it.
func (m *Machine) SetLoginEmail(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Step != StepLogin {
		return fmt.Errorf("%w: %s", ErrWrongStep, m.state.Step)
	}
	m.login.Email = email
	_ = m.validateInto(FieldEmail)
	return nil
}

// SetRememberEmail toggles whether the email is kept for the next start.
func (m *Machine) SetRememberEmail(remember bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Step != StepLogin {
		return fmt.Errorf("%w: %s", ErrWrongStep, m.state.Step)
	}
	m.login.RememberEmail = remember
	return nil
}

// SubmitLogin validates the email, applies the remember-email rule and moves
// to welcome-back carrying the email. If the store write fails the step does
// not change.
func (m *Machine) SubmitLogin(ctx context.Context) error {
	m.mu.Lock()
	if err := m.require(StepLogin); err != nil {
		m.unlock()
		return err
	}
	if err := m.validateInto(FieldEmail); err != nil {
		m.unlock()
		return err
	}
	d := m.login
	m.begin()

	err := m.applyRemember(ctx, d)

	m.finish()
	defer m.unlock()
	if err != nil {
		return err
	}
	m.log.Info(ctx, "login submitted", "email", logging.MaskEmail(d.Email))
	m.wipePassword()
	m.transition(ctx, State{Step: StepWelcomeBack, Email: d.Email})
	return nil
}

// RequestSSO validates the email, applies the remember-email rule and hands
// the draft to Handlers.SSO. The step is left to the collaborator.
func (m *Machine) RequestSSO(ctx context.Context) error {
	m.mu.Lock()
	if err := m.require(StepLogin); err != nil {
		m.unlock()
		return err
	}
	if err := m.validateInto(FieldEmail); err != nil {
		m.unlock()
		return err
	}
	d := m.login
	m.begin()

	err := m.applyRemember(ctx, d)
	if err == nil && m.handlers.SSO != nil {
		if herr := m.handlers.SSO(ctx, d); herr != nil {
			err = collaboratorErr("sso", herr)
		}
	}

	m.finish()
	defer m.unlock()
	if err != nil {
		m.log.Warn(ctx, "sso request failed", "error", err)
	}
	return err
}

// applyRemember stores the email when remember is set and deletes any
// remembered email otherwise.
func (m *Machine) applyRemember(ctx context.Context, d LoginDraft) error {
	if d.RememberEmail {
		if err := m.store.SetEmail(ctx, d.Email); err != nil {
			return fmt.Errorf("remember email: %w", err)
		}
		return nil
	}
	if err := m.store.DeleteEmail(ctx); err != nil {
		return fmt.Errorf("forget email: %w", err)
	}
	return nil
}

// GoToRegister shows the register form. Available from login and
// welcome-back; the carried email is dropped.
func (m *Machine) GoToRegister(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlock()
	if m.submitting {
		return ErrBusy
	}
	if m.state.Step != StepLogin && m.state.Step != StepWelcomeBack {
		return fmt.Errorf("%w: %s", ErrWrongStep, m.state.Step)
	}
	m.wipePassword()
	m.register = RegisterDraft{}
	m.transition(ctx, State{Step: StepRegister})
	return nil
}
