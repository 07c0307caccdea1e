// Package flow is the authentication onboarding state machine.
//
// It owns the current step (login, register, welcome-back) and the email
// carried from a successful login into welcome-back, plus the draft values
// of whichever form is on screen. Transitions:
//
//	login        --SubmitLogin(valid email)-->  welcome-back (email carried)
//	login        --GoToRegister-->              register
//	welcome-back --GoToRegister-->              register (email dropped)
//	register     --GoToLogin-->                 login
//	welcome-back --Back-->                      login (email dropped)
//
// RequestSSO, SubmitRegister, DeviceLogin and SubmitPassword call out to
// Handlers and never change the step themselves. Every action that writes
// to the store or calls a handler is rejected with ErrBusy while another one
// is in flight, and no action fires on invalid input.
package flow
