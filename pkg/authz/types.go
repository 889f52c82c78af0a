package authz

import (
	"strings"
)

// Mode controls how denials are handled. Shadow logs the denial but lets the
// call through; useful while rolling a new policy out.
type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

func sanitizeMode(m Mode) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(string(m)))) {
	case ModeShadow:
		return ModeShadow
	case ModeDisabled:
		return ModeDisabled
	default:
		return ModeEnforce
	}
}

// Attributes carry optional ABAC-style attributes with a request.
type Attributes map[string]any

// Request encapsulates the parameters of a single policy evaluation.
type Request struct {
	Subject    string
	Domain     string
	Object     string
	Action     string
	Attributes Attributes
}

type RequestOption func(*Request)

func WithAttributes(attrs Attributes) RequestOption {
	return func(r *Request) {
		r.Attributes = attrs
	}
}

func NewRequest(subject, domain, object, action string, opts ...RequestOption) Request {
	req := Request{
		Subject:    subject,
		Domain:     domain,
		Object:     object,
		Action:     action,
		Attributes: Attributes{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return req
}

// SubjectForRole builds a subject identifier in the form role:{name}. The
// depot core authorizes roles, not individual principals.
func SubjectForRole(role string) string {
	return "role:" + strings.TrimSpace(role)
}

// NormalizeAction lowercases an action verb.
func NormalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}
