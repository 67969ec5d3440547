package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusLabels = map[statusKind]string{
	statusInfo:  "INFO",
	statusOK:    "OK",
	statusWarn:  "WARN",
	statusError: "ERROR",
}

var statusColors = map[statusKind]string{
	statusInfo:  "\x1b[34m",
	statusOK:    "\x1b[32m",
	statusWarn:  "\x1b[33m",
	statusError: "\x1b[31m",
}

const (
	ansiReset        = "\x1b[0m"
	statusLabelWidth = 22
	statusIndent     = "  "
)

// statusReport collects titled sections of labelled status lines.
type statusReport struct {
	colorize bool
	lines    []string
}

func newStatusReport(w io.Writer) *statusReport {
	return &statusReport{colorize: shouldColorize(w)}
}

func (r *statusReport) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	r.lines = append(r.lines, r.paint(statusInfo, line), r.paint(statusInfo, rule))
}

func (r *statusReport) add(label string, kind statusKind, message string) {
	text := "[" + statusLabels[kind] + "]"
	if message != "" {
		text += " " + message
	}
	r.lines = append(r.lines, r.paint(kind, fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", text)))
}

func (r *statusReport) check(label string, passed bool, message string) {
	kind := statusOK
	if !passed {
		kind = statusError
	}
	r.add(label, kind, message)
}

func (r *statusReport) paint(kind statusKind, s string) string {
	if !r.colorize {
		return s
	}
	return statusColors[kind] + s + ansiReset
}

func (r *statusReport) writeTo(w io.Writer) error {
	_, err := fmt.Fprintln(w, strings.Join(r.lines, "\n"))
	return err
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
