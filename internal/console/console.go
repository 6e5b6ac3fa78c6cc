// Package console prints the crawler's human-readable progress lines.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Printer writes progress to an io.Writer. Write errors are ignored, as
// with fmt.Printf.
type Printer struct {
	w       io.Writer
	verbose bool
}

// New returns a Printer writing to w
func New(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

// Printf writes a formatted line
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Verbosef writes only when verbose output is enabled
func (p *Printer) Verbosef(format string, args ...any) {
	if p.verbose {
		p.Printf(format, args...)
	}
}

// Banner prints a styled title followed by a rule of '='
func (p *Printer) Banner(title string, width int) {
	p.Printf("%s", bannerStyle.Render(title))
	p.Rule("=", width)
}

// Heading prints a bold line
func (p *Printer) Heading(format string, args ...any) {
	p.Printf("%s", headingStyle.Render(fmt.Sprintf(format, args...)))
}

// Rule prints ch repeated width times
func (p *Printer) Rule(ch string, width int) {
	p.Printf("%s", strings.Repeat(ch, width))
}

// Step announces a step with its marker
func (p *Printer) Step(icon, format string, args ...any) {
	p.Printf("%s %s", icon, fmt.Sprintf(format, args...))
}

// Success prints a ✅ line
func (p *Printer) Success(format string, args ...any) {
	p.Printf("✅ %s", fmt.Sprintf(format, args...))
}

// Warn prints a ⚠️ line
func (p *Printer) Warn(format string, args ...any) {
	p.Printf("%s", warnStyle.Render("⚠️ "+fmt.Sprintf(format, args...)))
}

// Error prints a ❌ line
func (p *Printer) Error(format string, args ...any) {
	p.Printf("%s", errorStyle.Render("❌ "+fmt.Sprintf(format, args...)))
}

// Field prints an indented "Key: value" line
func (p *Printer) Field(key string, value any) {
	p.Printf("   %s: %v", key, value)
}
