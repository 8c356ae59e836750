// Package errors defines the error taxonomy the rest of calc panics and
// recovers with. Parse and compile errors are raised by panic(*CalcError)
// and caught at the nearest recovery point (the REPL loop or a file read);
// this mirrors the panic/recover discipline the parser used for syntax
// errors, generalized to every error kind the evaluator can raise.
package errors

import (
	"fmt"
	"strings"
)

// Kind enumerates the error categories the evaluator can raise.
type Kind string

const (
	Parse       Kind = "ParseError"
	Resolve     Kind = "ResolveError"
	Type        Kind = "TypeError"
	Domain      Kind = "DomainError"
	Arity       Kind = "ArityError"
	Memory      Kind = "MemoryError"
	Interrupt   Kind = "InterruptError"
	IOPermission Kind = "IOPermissionError"
	IO          Kind = "IOError"
)

// SourceLocation pinpoints a file/line/column triple. File is empty for
// interactively-typed input.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// StackFrame is one entry in a CalcError's call stack, innermost last.
type StackFrame struct {
	Function string
	File     string
	Line     int
	Column   int
}

// CalcError is the single error type every calc subsystem raises. Parser
// and compiler code panics one; the interpreter's top-level eval loop and
// the CLI recover it.
type CalcError struct {
	Kind      Kind
	Message   string
	Location  SourceLocation
	CallStack []StackFrame
	Source    string
}

func (e *CalcError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))

	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("\n  at %s:%d:%d", e.Location.File, e.Location.Line, e.Location.Column))
	} else if e.Location.Line > 0 {
		sb.WriteString(fmt.Sprintf("\n  at line %d:%d", e.Location.Line, e.Location.Column))
	}

	if e.Source != "" {
		prefix := fmt.Sprintf("  %d | ", e.Location.Line)
		sb.WriteString(fmt.Sprintf("\n%s%s", prefix, e.Source))
		sb.WriteString("\n" + strings.Repeat(" ", len(prefix)))
		if e.Location.Column > 0 {
			sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
		}
		sb.WriteString("^")
	}

	for _, frame := range e.CallStack {
		if frame.Function != "" {
			sb.WriteString(fmt.Sprintf("\n  in %s (%s:%d:%d)", frame.Function, frame.File, frame.Line, frame.Column))
		} else {
			sb.WriteString(fmt.Sprintf("\n  at %s:%d:%d", frame.File, frame.Line, frame.Column))
		}
	}

	return sb.String()
}

// Fatal reports whether this error kind always terminates the process
// rather than returning control to the prompt.
func (e *CalcError) Fatal() bool {
	return e.Kind == Memory
}

func new_(kind Kind, message, file string, line, column int) *CalcError {
	return &CalcError{
		Kind:    kind,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

func NewParseError(message, file string, line, column int) *CalcError {
	return new_(Parse, message, file, line, column)
}

func NewResolveError(message, file string, line, column int) *CalcError {
	return new_(Resolve, message, file, line, column)
}

func NewTypeError(message, file string, line, column int) *CalcError {
	return new_(Type, message, file, line, column)
}

func NewDomainError(message, file string, line, column int) *CalcError {
	return new_(Domain, message, file, line, column)
}

func NewArityError(message, file string, line, column int) *CalcError {
	return new_(Arity, message, file, line, column)
}

func NewMemoryError(message string) *CalcError {
	return &CalcError{Kind: Memory, Message: message}
}

func NewInterruptError(message string) *CalcError {
	return &CalcError{Kind: Interrupt, Message: message}
}

func NewIOPermissionError(message string) *CalcError {
	return &CalcError{Kind: IOPermission, Message: message}
}

func NewIOError(message string) *CalcError {
	return &CalcError{Kind: IO, Message: message}
}

func (e *CalcError) WithSource(source string) *CalcError {
	e.Source = source
	return e
}

func (e *CalcError) WithStack(stack []StackFrame) *CalcError {
	e.CallStack = stack
	return e
}

func (e *CalcError) AddStackFrame(function, file string, line, column int) *CalcError {
	e.CallStack = append(e.CallStack, StackFrame{
		Function: function,
		File:     file,
		Line:     line,
		Column:   column,
	})
	return e
}
