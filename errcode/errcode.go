package errcode

// Code is a stable, link-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Transport is a byte-level read or write failure on the port.
	Transport Code = "transport"
	// Protocol is a framing fault: unrecognized event byte or a frame
	// that never completed.
	Protocol Code = "protocol"
	// UnknownCommand is a dispatch miss: the function name is not in
	// the command table.
	UnknownCommand Code = "unknown_command"
	// NotReady marks outbound traffic dropped before the handshake.
	NotReady Code = "not_ready"
	// Restarting marks the terminal transition taken by the reset
	// handler. It is not a fault.
	Restarting Code = "restarting"

	InvalidParams Code = "invalid_params"
	Fatal         Code = "fatal"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
