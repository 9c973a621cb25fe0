// Package cli provides terminal output helpers for vendorctl.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// Printer writes status lines and tables, colored when the writer is a
// terminal.
type Printer struct {
	w        io.Writer
	colorize bool
}

// NewPrinter writes to w. Color is enabled only for terminals.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, colorize: isTerminal(w)}
}

// Stdout is a Printer on os.Stdout.
func Stdout() *Printer {
	return NewPrinter(os.Stdout)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Colorize wraps text in color when enabled.
func (p *Printer) Colorize(text, color string) string {
	if !p.colorize {
		return text
	}
	return color + text + ColorReset
}

func (p *Printer) line(symbol, color, message string) {
	fmt.Fprintf(p.w, "%s %s\n", p.Colorize(symbol, color), message)
}

// Success prints a success message
func (p *Printer) Success(message string) { p.line("✓", ColorGreen, message) }

// Error prints an error message
func (p *Printer) Error(message string) { p.line("✗", ColorRed, message) }

// Warning prints a warning message
func (p *Printer) Warning(message string) { p.line("⚠", ColorYellow, message) }

// Info prints an info message
func (p *Printer) Info(message string) { p.line("ℹ", ColorBlue, message) }

// Session prints the session summary used by `status`.
func (p *Printer) Session(s domain.Session) {
	if !s.IsAuthenticated || s.User == nil {
		p.Warning("not logged in")
		return
	}
	p.Success(fmt.Sprintf("logged in as %s (%s)", displayName(s.User), s.User.Phone))
	fmt.Fprintf(p.w, "  wallet balance: %.2f\n", s.User.WalletBalance)
	if s.ActiveStoreID == "" {
		fmt.Fprintln(p.w, "  active store:   none")
		return
	}
	if store, ok := domain.FindStore(s.User.Stores, s.ActiveStoreID); ok {
		fmt.Fprintf(p.w, "  active store:   %s (%s)\n", store.Name, store.ID)
		return
	}
	fmt.Fprintf(p.w, "  active store:   %s\n", s.ActiveStoreID)
}

// Stores prints the store tree with the active store marked.
func (p *Printer) Stores(stores []domain.Store, activeID string) {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tKIND\tLINK")
	var walk func(list []domain.Store, depth int)
	walk = func(list []domain.Store, depth int) {
		for _, s := range list {
			marker := ""
			if s.ID == activeID {
				marker = p.Colorize("*", ColorGreen)
			}
			name := strings.Repeat("  ", depth) + s.Name
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", marker, s.ID, name, s.Kind, s.StoreLink)
			walk(s.Branches, depth+1)
		}
	}
	walk(stores, 0)
	_ = tw.Flush()
}

// Table prints rows under a header.
func (p *Printer) Table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

func displayName(u *domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}

// isTerminal checks if w is a character device
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
