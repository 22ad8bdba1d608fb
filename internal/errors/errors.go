package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrorType classifies a failure so callers can react to the kind, not the text
type ErrorType int

const (
	// ErrorTypeConfig: missing or inconsistent configuration
	ErrorTypeConfig ErrorType = iota
	// ErrorTypeValidation: run parameters that cannot be scored
	ErrorTypeValidation
	// ErrorTypeTool: the version-control tool failed or is unavailable
	ErrorTypeTool
	// ErrorTypeSink: the reporting sink rejected or failed to deliver facts
	ErrorTypeSink
	// ErrorTypeInternal: anything else
	ErrorTypeInternal
)

var typeNames = map[ErrorType]string{
	ErrorTypeConfig:     "CONFIG",
	ErrorTypeValidation: "VALIDATION",
	ErrorTypeTool:       "TOOL",
	ErrorTypeSink:       "SINK",
	ErrorTypeInternal:   "INTERNAL",
}

func (t ErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Severity ranks how much of the run an error invalidates
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical // the run stops
)

var severityNames = [...]string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "UNKNOWN"
	}
	return severityNames[s]
}

// Error is a classified error carrying its cause and key/value context
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext attaches key=value and returns e for chaining
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is matches any *Error of the same type, so errors.Is(err, &Error{Type: ErrorTypeSink})
// works as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Type == t.Type
}

// IsFatal reports whether the run must stop
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// DetailedString renders the error with its context and capture site
func (e *Error) DetailedString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] %s\n", e.Severity, e.Type, e.Message)

	if e.Cause != nil {
		fmt.Fprintf(&sb, "Caused by: %v\n", e.Cause)
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("Context:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %v\n", k, e.Context[k])
		}
	}

	if e.StackTrace != "" {
		sb.WriteString("Stack trace:\n")
		sb.WriteString(e.StackTrace)
	}
	return sb.String()
}

const maxFrames = 10

func callers(skip int) string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "  %s:%d %s\n", f.File, f.Line, f.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

// New creates an error without a cause
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		StackTrace: callers(2),
	}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Cause:      err,
		StackTrace: callers(2),
	}
}

func ConfigErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

func ValidationErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeValidation, SeverityHigh, fmt.Sprintf(format, args...))
}

// ToolError wraps a failure of the version-control tool
func ToolError(err error, message string) *Error {
	return Wrap(err, ErrorTypeTool, SeverityCritical, message)
}

func ToolErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeTool, SeverityCritical, fmt.Sprintf(format, args...))
}

// SinkError wraps a failure of the reporting sink
func SinkError(err error, message string) *Error {
	return Wrap(err, ErrorTypeSink, SeverityCritical, message)
}

func SinkErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeSink, SeverityCritical, fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeInternal, SeverityCritical, fmt.Sprintf(format, args...))
}

// As returns the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}

// IsFatal reports whether err carries a critical *Error
func IsFatal(err error) bool {
	e, ok := As(err)
	return ok && e.IsFatal()
}

// GetType returns the type of the outermost *Error, ErrorTypeInternal for
// unclassified errors.
func GetType(err error) ErrorType {
	if e, ok := As(err); ok {
		return e.Type
	}
	return ErrorTypeInternal
}

// IsToolFailure reports whether err originates from the version-control tool
func IsToolFailure(err error) bool {
	return err != nil && GetType(err) == ErrorTypeTool
}

// IsSinkFailure reports whether err originates from the reporting sink
func IsSinkFailure(err error) bool {
	return err != nil && GetType(err) == ErrorTypeSink
}
