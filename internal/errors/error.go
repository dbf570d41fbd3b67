package errors

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Category groups error codes.
type Category string

const (
	CategoryProtocol Category = "protocol"
	CategoryAPI      Category = "api"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// Location is a position in a source or configuration file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// DomkitError is a coded error with an optional location, hint and wrapped
// cause.
type DomkitError struct {
	// Code is the registry key (e.g. "E120").
	Code string

	Category Category
	Message  string
	Detail   string

	Location *Location

	// Context holds the file lines around Location.
	Context []string

	Suggestion string
	DocURL     string

	Wrapped error
}

func (e *DomkitError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *DomkitError) Unwrap() error {
	return e.Wrapped
}

// Is matches another DomkitError by code.
func (e *DomkitError) Is(target error) bool {
	t, ok := target.(*DomkitError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithLocation records a file position and reads the surrounding lines.
func (e *DomkitError) WithLocation(file string, line, column int) *DomkitError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 3)
	return e
}

func (e *DomkitError) WithSuggestion(s string) *DomkitError {
	e.Suggestion = s
	return e
}

func (e *DomkitError) WithDetail(d string) *DomkitError {
	e.Detail = d
	return e
}

// Wrap sets the underlying cause.
func (e *DomkitError) Wrap(err error) *DomkitError {
	e.Wrapped = err
	return e
}

// readContextLines returns up to size lines centred on target.
func readContextLines(filename string, target, size int) []string {
	if target <= 0 {
		return nil
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	start := target - size/2
	end := target + size/2
	for n := 1; scanner.Scan(); n++ {
		if n >= start && n <= end {
			lines = append(lines, scanner.Text())
		}
		if n > end {
			break
		}
	}
	return lines
}

// New returns an error built from the template registered under code.
func New(code string) *DomkitError {
	template, ok := registry[code]
	if !ok {
		return &DomkitError{Code: code, Message: "Unknown error"}
	}
	return &DomkitError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf returns an uncoded error.
func Newf(category Category, format string, args ...any) *DomkitError {
	return &DomkitError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError returns err unchanged when it already is (or wraps) a
// DomkitError, and wraps it under code otherwise.
func FromError(err error, code string) *DomkitError {
	if err == nil {
		return nil
	}
	var de *DomkitError
	if errors.As(err, &de) {
		return de
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first DomkitError in err's chain.
func Code(err error) string {
	var de *DomkitError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
