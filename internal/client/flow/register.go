package flow

import (
	"context"
	"fmt"
)

// Register returns a copy of the register form.
func (m *Machine) Register() RegisterDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.register
}

// SetRegisterEmail updates the register email and revalidates shown fields.
func (m *Machine) SetRegisterEmail(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Step != StepRegister {
		return fmt.Errorf("%w: %s", ErrWrongStep, m.state.Step)
	}
	m.register.Email = email
	_ = m.validateInto(FieldEmail)
	return nil
}

// SetRegisterName updates the optional display name.
func (m *Machine) SetRegisterName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Step != StepRegister {
		return fmt.Errorf("%w: %s", ErrWrongStep, m.state.Step)
	}
	m.register.Name = name
	return nil
}

// SubmitRegister validates the email and hands the draft to
// Handlers.Register. The draft is kept so a failed attempt can be retried.
func (m *Machine) SubmitRegister(ctx context.Context) error {
	m.mu.Lock()
	if err := m.require(StepRegister); err != nil {
		m.unlock()
		return err
	}
	if err := m.validateInto(FieldEmail); err != nil {
		m.unlock()
		return err
	}
	d := m.register
	m.begin()

	var err error
	if m.handlers.Register != nil {
		if herr := m.handlers.Register(ctx, d); herr != nil {
			err = collaboratorErr("register", herr)
		}
	}

	m.finish()
	defer m.unlock()
	return err
}

// GoToLogin leaves the register form; its draft is discarded.
func (m *Machine) GoToLogin(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.require(StepRegister); err != nil {
		return err
	}
	m.register = RegisterDraft{}
	m.enterLogin(ctx)
	return nil
}
