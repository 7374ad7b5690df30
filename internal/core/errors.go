package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind is a stable identifier for a failure class.
type ErrorKind string

const (
	KindTimeout         ErrorKind = "transport.timeout"
	KindDNS             ErrorKind = "transport.dns"
	KindConnectionReset ErrorKind = "transport.connection-reset"
	KindConnection      ErrorKind = "transport.connection"
	KindHTTP            ErrorKind = "http"
	KindMalformed       ErrorKind = "parse.malformed"
	KindMissingField    ErrorKind = "parse.missing-field"
	KindInconsistent    ErrorKind = "parse.inconsistent"
	KindEmptyInput      ErrorKind = "validation.empty-input"
	KindOutOfRange      ErrorKind = "validation.out-of-range-parameter"
	KindInvalidArgument ErrorKind = "validation.invalid-argument"
	KindSchemaMismatch  ErrorKind = "schema-mismatch"
	KindCanceled        ErrorKind = "canceled"
	KindUnknownError    ErrorKind = "unknown"
)

var (
	ErrTimeout         = &Error{Kind: KindTimeout}
	ErrDNS             = &Error{Kind: KindDNS}
	ErrConnectionReset = &Error{Kind: KindConnectionReset}
	ErrConnection      = &Error{Kind: KindConnection}
	ErrHTTP            = &Error{Kind: KindHTTP}
	ErrMalformed       = &Error{Kind: KindMalformed}
	ErrMissingField    = &Error{Kind: KindMissingField}
	ErrInconsistent    = &Error{Kind: KindInconsistent}
	ErrEmptyInput      = &Error{Kind: KindEmptyInput}
	ErrOutOfRange      = &Error{Kind: KindOutOfRange}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrSchemaMismatch  = &Error{Kind: KindSchemaMismatch}
	ErrCanceled        = &Error{Kind: KindCanceled}
)

// Error is the single error type surfaced by the client pipeline.
type Error struct {
	Kind   ErrorKind
	Detail string
	// Status and Body are set for http errors only.
	Status int
	Body   string
	// Code is the vendor error code from the {error:{code,message}} envelope.
	Code  string
	Cause error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&sb, " %d", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&sb, " [%s]", e.Code)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Kind so sentinels work through wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// IsValidation reports whether the caller supplied bad input.
func (e *Error) IsValidation() bool {
	return strings.HasPrefix(string(e.Kind), "validation.")
}

// IsParse reports whether the vendor body could not be interpreted.
func (e *Error) IsParse() bool {
	return strings.HasPrefix(string(e.Kind), "parse.")
}

// IsTransport reports whether the error originated below the HTTP layer.
func (e *Error) IsTransport() bool {
	return strings.HasPrefix(string(e.Kind), "transport.")
}

// KindOf extracts the ErrorKind from any error, or KindUnknownError.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknownError
}

// AsError converts err into *Error, wrapping foreign errors as unknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknownError, Cause: err}
}

// Detached returns a copy of e whose cause is reduced to its message. The
// copy survives persistence and compares equal after a reload.
func (e *Error) Detached() *Error {
	if e == nil {
		return nil
	}
	d := *e
	if e.Cause != nil {
		d.Cause = CauseMessage(e.Cause.Error())
	}
	return &d
}

type causeMessage string

func (c causeMessage) Error() string {
	return string(c)
}

// CauseMessage turns a stored cause text back into an error. Empty text is no cause.
func CauseMessage(msg string) error {
	if msg == "" {
		return nil
	}
	return causeMessage(msg)
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func NewTransportError(kind TransportFailureKind, cause error) *Error {
	var k ErrorKind
	switch kind {
	case FailureTimeout:
		k = KindTimeout
	case FailureDNS:
		k = KindDNS
	case FailureConnectionReset:
		k = KindConnectionReset
	default:
		k = KindConnection
	}
	return &Error{Kind: k, Cause: cause}
}

// NewHTTPError builds an http error, decoding the vendor envelope when present.
func NewHTTPError(status int, body []byte) *Error {
	e := &Error{Kind: KindHTTP, Status: status, Body: string(body)}

	var envelope struct {
		Error *struct {
			Code    json.RawMessage `json:"code"`
			Message string          `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error != nil:
			e.Code = strings.Trim(string(envelope.Error.Code), `"`)
			e.Detail = envelope.Error.Message
		case envelope.Message != "":
			e.Detail = envelope.Message
		}
	}
	if e.Detail == "" {
		e.Detail = http.StatusText(status)
	}
	return e
}
