// Package apperr defines the failure kinds every mutating operation surfaces to its caller.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the machine-distinguishable class of a failure.
type Kind string

const (
	KindUnknown    Kind = "UNKNOWN"
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindConflict   Kind = "CONFLICT"
	KindTransient  Kind = "TRANSIENT"
)

// Reason refines a kind where callers react differently.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonAvatarTaken Reason = "AVATAR_TAKEN"
	ReasonNotAdmin    Reason = "NOT_ADMIN"
	ReasonSelfKick    Reason = "SELF_KICK"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and, when set on the target, reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == ReasonNone || t.Reason == e.Reason
}

// Sentinels usable with errors.Is.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrForbidden   = &Error{Kind: KindForbidden}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrAvatarTaken = &Error{Kind: KindConflict, Reason: ReasonAvatarTaken}
	ErrTransient   = &Error{Kind: KindTransient}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

func Forbidden(reason Reason, format string, args ...any) error {
	return &Error{Kind: KindForbidden, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func AvatarTaken(avatar string) error {
	return &Error{Kind: KindConflict, Reason: ReasonAvatarTaken, Message: fmt.Sprintf("avatar %q is already taken", avatar)}
}

func Transient(err error) error {
	return &Error{Kind: KindTransient, Message: "backing store unavailable", Err: err}
}

// New builds an error of the given kind, used when decoding a kind off the wire.
func New(kind Kind, reason Reason, msg string) error {
	return &Error{Kind: kind, Reason: reason, Message: msg}
}

// KindOf classifies err. Context cancellation and deadlines count as transient.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	return KindUnknown
}

// ReasonOf returns the reason attached to err, if any.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}
