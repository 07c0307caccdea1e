package flow

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vanguard/internal/memx"
)

// SetMasterPassword replaces the password draft. The machine keeps its own
// copy; the caller may wipe pw afterwards.
func (m *Machine) SetMasterPassword(pw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Step != StepWelcomeBack {
		return fmt.Errorf("%w: %s", ErrWrongStep, m.state.Step)
	}
	m.wipeOnlyPassword()
	m.password = memx.Clone(pw)
	_ = m.validateInto(FieldMasterPassword)
	return nil
}

func (m *Machine) wipeOnlyPassword() {
	show := m.showPass
	m.wipePassword()
	m.showPass = show
}

// ToggleShowPassword flips whether the password field is rendered in clear.
func (m *Machine) ToggleShowPassword() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showPass = !m.showPass
	return m.showPass
}

// ShowPassword reports whether the master password is typed visibly.
func (m *Machine) ShowPassword() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showPass
}

// SubmitPassword hands the carried email and the master password to
// Handlers.Continue. The step does not change here; on success the draft
// password is wiped, on failure it is kept for a retry.
func (m *Machine) SubmitPassword(ctx context.Context) error {
	m.mu.Lock()
	if err := m.require(StepWelcomeBack); err != nil {
		m.unlock()
		return err
	}
	if err := m.validateInto(FieldMasterPassword); err != nil {
		m.unlock()
		return err
	}
	email := m.state.Email
	pw := memx.Clone(m.password)
	m.begin()

	var err error
	if m.handlers.Continue != nil {
		if herr := m.handlers.Continue(ctx, email, pw); herr != nil {
			err = collaboratorErr("continue", herr)
		}
	}
	memx.Wipe(pw)

	m.finish()
	defer m.unlock()
	if err != nil {
		m.log.Warn(ctx, "continue failed", "error", err)
		return err
	}
	m.wipeOnlyPassword()
	return nil
}

// DeviceLogin asks Handlers.DeviceLogin to approve the login from another
// device. No local step change.
func (m *Machine) DeviceLogin(ctx context.Context) error {
	m.mu.Lock()
	if err := m.require(StepWelcomeBack); err != nil {
		m.unlock()
		return err
	}
	email := m.state.Email
	m.begin()

	var err error
	if m.handlers.DeviceLogin != nil {
		if herr := m.handlers.DeviceLogin(ctx, email); herr != nil {
			err = collaboratorErr("device login", herr)
		}
	}

	m.finish()
	defer m.unlock()
	return err
}

// Back returns to login, dropping the carried email.
func (m *Machine) Back(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.require(StepWelcomeBack); err != nil {
		return err
	}
	m.enterLogin(ctx)
	return nil
}
