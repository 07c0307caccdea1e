package flow

import (
	"errors"
	"strings"
)

var (
	// ErrBusy is returned while a previous submission is still running.
	ErrBusy = errors.New("submission in progress")
	// ErrWrongStep is returned for actions the current step does not offer.
	ErrWrongStep = errors.New("action not available on this step")
	// ErrCollaborator wraps failures returned by Handlers.
	ErrCollaborator = errors.New("collaborator failed")
)

// Field identifies an input of one of the forms.
type Field int

const (
	FieldEmail Field = iota
	FieldName
	FieldMasterPassword
)

func (f Field) String() string {
	switch f {
	case FieldEmail:
		return "email"
	case FieldName:
		return "name"
	case FieldMasterPassword:
		return "masterPassword"
	default:
		return "unknown"
	}
}

// Errors maps a field of the current form to its message. Maps handed out
// by the machine are copies and never change afterwards.
type Errors map[Field]string

// fieldOrder is the order the fields appear in on the forms.
var fieldOrder = []Field{FieldEmail, FieldName, FieldMasterPassword}

// Each calls fn for every failing field in form order.
func (e Errors) Each(fn func(f Field, msg string)) {
	for _, f := range fieldOrder {
		if msg, ok := e[f]; ok {
			fn(f, msg)
		}
	}
}

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ValidationError blocks an action whose inputs are invalid.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	e.Fields.Each(func(f Field, msg string) {
		parts = append(parts, f.String()+": "+msg)
	})
	return "invalid input: " + strings.Join(parts, "; ")
}
