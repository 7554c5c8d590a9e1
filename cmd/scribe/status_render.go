package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
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

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

// statusLine is one labeled row in the status report.
type statusLine struct {
	label   string
	kind    statusKind
	message string
}

func infoLine(label, message string) statusLine {
	return statusLine{label: label, kind: statusInfo, message: message}
}

// runningLine reports daemon liveness.
func runningLine(running bool) statusLine {
	line := statusLine{label: "Running", kind: statusWarn, message: "no"}
	if running {
		line.kind = statusOK
		line.message = "yes"
	}
	return line
}

// phaseLine colors the workflow phase: the idle initial phase warns,
// processing is informational, settled phases read as OK.
func phaseLine(phase string) statusLine {
	kind := statusOK
	switch phase {
	case "initial":
		kind = statusWarn
	case "processing":
		kind = statusInfo
	}
	return statusLine{label: "Phase", kind: kind, message: phase}
}

// statusTextLine flags worker failure statuses, which carry the "Error:"
// prefix.
func statusTextLine(text string) statusLine {
	kind := statusInfo
	if strings.HasPrefix(text, "Error:") {
		kind = statusError
	}
	return statusLine{label: "Status", kind: kind, message: text}
}

func loadedModelLine(model string) statusLine {
	return statusLine{label: "Model", kind: statusOK, message: model}
}

func exitCodeLine(code int) statusLine {
	kind := statusOK
	if code != 0 {
		kind = statusError
	}
	return statusLine{label: "Last Exit", kind: kind, message: strconv.Itoa(code)}
}

func (l statusLine) render(colorize bool) string {
	statusText := "[" + l.kind.text() + "]"
	if l.message != "" {
		statusText += " " + l.message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, l.label+":", statusText)
	if colorize {
		if color := l.kind.color(); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func (k statusKind) text() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
