package apperr

import (
	"errors"

	"connectrpc.com/connect"
)

// ReasonHeader carries the Reason of a failed call in the response metadata.
const ReasonHeader = "Poker-Error-Reason"

var kindCodes = map[Kind]connect.Code{
	KindValidation: connect.CodeInvalidArgument,
	KindNotFound:   connect.CodeNotFound,
	KindForbidden:  connect.CodePermissionDenied,
	KindConflict:   connect.CodeAlreadyExists,
	KindTransient:  connect.CodeUnavailable,
	KindUnknown:    connect.CodeInternal,
}

// Code maps a kind onto its connect status code.
func Code(kind Kind) connect.Code {
	if c, ok := kindCodes[kind]; ok {
		return c
	}
	return connect.CodeInternal
}

// ToConnect converts err into a *connect.Error, keeping the reason in metadata.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	cerr := connect.NewError(Code(KindOf(err)), err)
	if r := ReasonOf(err); r != ReasonNone {
		cerr.Meta().Set(ReasonHeader, string(r))
	}
	return cerr
}

// FromConnect turns a client-side connect failure back into a classified error.
func FromConnect(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if !errors.As(err, &ce) {
		if KindOf(err) == KindTransient {
			return Transient(err)
		}
		return err
	}
	reason := Reason(ce.Meta().Get(ReasonHeader))
	switch ce.Code() {
	case connect.CodeInvalidArgument:
		return New(KindValidation, reason, ce.Message())
	case connect.CodeNotFound:
		return New(KindNotFound, reason, ce.Message())
	case connect.CodePermissionDenied:
		return New(KindForbidden, reason, ce.Message())
	case connect.CodeAlreadyExists:
		return New(KindConflict, reason, ce.Message())
	case connect.CodeUnavailable, connect.CodeDeadlineExceeded, connect.CodeCanceled:
		return &Error{Kind: KindTransient, Reason: reason, Message: ce.Message(), Err: err}
	default:
		return &Error{Kind: KindUnknown, Reason: reason, Message: ce.Message(), Err: err}
	}
}
