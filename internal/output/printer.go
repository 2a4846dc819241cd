// Package output formats CLI output.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/dkolesni-prog/recall/internal/workflow"
)

// Printer writes user-facing lines. Results go to out, statuses and errors to err.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// UseColors reports whether the terminal should get colored output.
func UseColors(noColor bool) bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) Info(format string, args ...any) {
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.err, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, format+"\n", args...)
}

func (p *Printer) Success(format string, args ...any) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.err, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, format+"\n", args...)
}

func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.err, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, format+"\n", args...)
}

// Print writes a plain result line to out.
func (p *Printer) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}

// Render shows workflow statuses. Idle clears are not printed.
func (p *Printer) Render(s workflow.Status) {
	switch s.State {
	case workflow.Busy:
		if s.Message != "" {
			p.Info("%s", s.Message)
		}
	case workflow.Success:
		p.Success("%s", s.Message)
	case workflow.Failure:
		p.Error("%s", s.Message)
	}
}
