package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

var colorEnabled = true

// SetColors turns ANSI colors in Format and PrintError on or off.
func SetColors(on bool) { colorEnabled = on }

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// Format renders the error for a terminal.
func (e *DomkitError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(color(colorRed+colorBold, "ERROR "))
	if e.Code != "" {
		b.WriteString(color(colorBold, e.Code+": "))
	}
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Location != nil {
		b.WriteString("  ")
		b.WriteString(color(colorCyan, e.Location.String()))
		b.WriteString("\n\n")
		if len(e.Context) > 0 {
			writeContext(&b, e.Location, e.Context)
			b.WriteString("\n")
		}
	}

	detail := e.Detail
	if e.Wrapped != nil {
		if detail != "" {
			detail += " "
		}
		detail += "Cause: " + e.Wrapped.Error()
	}
	for _, line := range wrapText(detail, 72) {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if detail != "" {
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(color(colorCyan, "Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}

	if e.DocURL != "" {
		b.WriteString("  ")
		b.WriteString(color(colorGray, "Learn more: "))
		b.WriteString(color(colorBlue, e.DocURL))
		b.WriteString("\n")
	}
	return b.String()
}

func writeContext(b *strings.Builder, loc *Location, lines []string) {
	first := loc.Line - len(lines)/2
	if first < 1 {
		first = 1
	}
	for i, line := range lines {
		n := first + i
		if n == loc.Line {
			b.WriteString("  ")
			b.WriteString(color(colorRed, "→ "))
		} else {
			b.WriteString("    ")
		}
		fmt.Fprintf(b, "%4d", n)
		b.WriteString(color(colorGray, " │ "))
		b.WriteString(line)
		b.WriteString("\n")

		if n == loc.Line && loc.Column > 0 {
			b.WriteString("        ")
			b.WriteString(color(colorGray, "│ "))
			b.WriteString(strings.Repeat(" ", loc.Column-1))
			b.WriteString(color(colorRed, "^"))
			b.WriteString("\n")
		}
	}
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	DocURL     string    `json:"docUrl,omitempty"`
	Cause      string    `json:"cause,omitempty"`
}

// FormatJSON renders the error as a JSON object.
func (e *DomkitError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	buf, _ := json.Marshal(out)
	return string(buf)
}

func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// PrintError writes err to w, formatted when it is a DomkitError.
func PrintError(w io.Writer, err error) {
	var de *DomkitError
	if errors.As(err, &de) {
		fmt.Fprint(w, de.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", color(colorRed+colorBold, "ERROR:"), err.Error())
}

// PrintJSON writes err to w as one JSON object per line. Errors that are
// not DomkitErrors carry only a message.
func PrintJSON(w io.Writer, err error) {
	var de *DomkitError
	if errors.As(err, &de) {
		fmt.Fprintln(w, de.FormatJSON())
		return
	}
	buf, _ := json.Marshal(jsonError{Message: err.Error()})
	fmt.Fprintln(w, string(buf))
}
