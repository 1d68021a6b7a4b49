package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tripcost/travelcost/internal/utils"
)

const (
	colorGreen = "\033[0;32m"
	colorRed   = "\033[0;31m"
	colorReset = "\033[0m"
)

// printer writes status lines, colored only on a terminal.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	f, ok := w.(*os.File)
	return &printer{w: w, color: ok && term.IsTerminal(int(f.Fd()))}
}

func (p *printer) paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + colorReset
}

func (p *printer) success(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint(colorGreen, "[OK]"), msg)
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint(colorRed, "[ERROR]"), fmt.Sprintf(format, args...))
}

// writeResult prints the text report, or the structured result with --json.
func writeResult(w io.Writer, jsonOut bool, text string, result any) error {
	if !jsonOut {
		_, err := fmt.Fprintln(w, strings.TrimRight(text, "\n"))
		return err
	}
	data, err := utils.MarshalIndentNoEscape(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
