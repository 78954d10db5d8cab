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

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// painter writes status output, adding ANSI colour only on terminals.
type painter struct {
	out   io.Writer
	color bool
}

func newPainter(out io.Writer) painter {
	return painter{out: out, color: shouldColorize(out)}
}

func (p painter) paint(color, s string) string {
	if !p.color || color == "" {
		return s
	}
	return color + s + ansiReset
}

// section prints a title underlined to its width.
func (p painter) section(title string) {
	line := "== " + strings.TrimSpace(title) + " =="
	fmt.Fprintln(p.out, p.paint(ansiBlue, line))
	fmt.Fprintln(p.out, p.paint(ansiBlue, strings.Repeat("-", len(line))))
}

// status prints "  label:   [KIND] message" with the label column padded.
func (p painter) status(label string, kind statusKind, message string) {
	style := statusStyles[kind]
	tag := "[" + style.label + "]"
	if message != "" {
		tag += " " + message
	}
	fmt.Fprintln(p.out, p.paint(style.color, fmt.Sprintf("  %-20s %s", label+":", tag)))
}

// shouldColorize reports whether writer is a terminal and NO_COLOR is unset.
func shouldColorize(writer io.Writer) bool {
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
