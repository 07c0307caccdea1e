// Package validate holds the pure field validators shared by every form of
// the onboarding flow. Validators never touch state, so they can run on each
// keystroke, on blur and on submit with identical results.
package validate

import (
	"net/mail"
	"net/url"
	"strings"
)

// Messages shown next to invalid fields.
const (
	MsgInvalidEmail      = "Enter a valid email address"
	MsgInvalidURL        = "Enter a valid URL"
	MsgServerURLRequired = "Server URL is required"
)

// Result is either Valid (Message == "") or Invalid with a message. Value is
// the canonical form of the input when valid.
type Result struct {
	Value   string
	Message string
}

// Valid reports whether the input was accepted.
func (r Result) Valid() bool { return r.Message == "" }

func valid(v string) Result { return Result{Value: v} }

func invalid(msg string) Result { return Result{Message: msg} }

func requiredMsg(field string) string { return field + " is required" }

// Required rejects the empty string.
func Required(field, value string) Result {
	if value == "" {
		return invalid(requiredMsg(field))
	}
	return valid(value)
}

// Email accepts addresses of the shape local@domain.tld.
func Email(value string) Result {
	if value == "" {
		return invalid(requiredMsg("Email"))
	}
	if !isEmail(value) {
		return invalid(MsgInvalidEmail)
	}
	return valid(value)
}

func isEmail(s string) bool {
	if strings.TrimSpace(s) != s {
		return false
	}
	addr, err := mail.ParseAddress(s)
	// reject "Name <a@b.c>" and other forms that rewrite the input
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" || strings.HasPrefix(l, "-") || strings.HasSuffix(l, "-") {
			return false
		}
	}
	return len(labels[len(labels)-1]) >= 2
}

// URL is the required URL validator. Surrounding whitespace is trimmed and
// the trimmed value is the canonical form.
func URL(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return invalid(MsgServerURLRequired)
	}
	if !isAbsoluteURL(v) {
		return invalid(MsgInvalidURL)
	}
	return valid(v)
}

// OptionalURL accepts empty (after trimming) input as absent and otherwise
// applies URL.
func OptionalURL(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return valid("")
	}
	return URL(v)
}

func isAbsoluteURL(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != "" && u.Hostname() != ""
}
