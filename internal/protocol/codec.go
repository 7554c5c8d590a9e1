package protocol

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// JSONDelimiter marks the start and end of an embedded JSON payload.
// The worker prints exactly sixty "=" characters on their own line.
var JSONDelimiter = strings.Repeat("=", 60)

var modelNamePattern = regexp.MustCompile(`Model '([^']+)'`)

// statusRule maps worker log phrasing to a status hint. Rules are checked in
// order; the first match wins.
type statusRule struct {
	substrings []string
	hint       string
	ready      bool
}

var statusRules = []statusRule{
	{substrings: []string{"Starting", "Setting up"}, hint: "Starting service..."},
	{substrings: []string{"Environment setup complete"}, hint: "Service running", ready: true},
	{substrings: []string{"Transcribing"}, hint: "Transcribing audio..."},
	{substrings: []string{"Downloading", "Loading model"}, hint: "Loading model..."},
	{substrings: []string{"Transcription completed"}, hint: "Processing transcription..."},
}

// Codec incrementally classifies worker output lines. It carries only the JSON
// capture state; one Codec serves one session's output stream.
type Codec struct {
	capturing bool
	jsonLines []string
}

// Capturing reports whether the codec is inside a JSON delimiter block.
func (c *Codec) Capturing() bool {
	return c.capturing
}

// Reset drops any partial JSON capture, e.g. when a session ends mid-block.
func (c *Codec) Reset() {
	c.capturing = false
	c.jsonLines = nil
}

// Feed classifies one raw line (line terminators already stripped) and
// returns the events it produced, in order.
func (c *Codec) Feed(line string) []Event {
	if !utf8.ValidString(line) {
		line = strings.ToValidUTF8(line, "�")
	}

	if line == JSONDelimiter {
		if c.capturing {
			block := strings.Join(c.jsonLines, "\n")
			c.capturing = false
			c.jsonLines = nil
			return []Event{JSONBlock{Text: block}}
		}
		c.capturing = true
		return nil
	}

	if c.capturing {
		c.jsonLines = append(c.jsonLines, line)
		return nil
	}

	events := []Event{LogLine{Text: line}}

	if percent, ok := parseProgress(line); ok {
		events = append(events, Progress{Percent: percent})
	}
	if name, ok := parseModelLoaded(line); ok {
		events = append(events, ModelLoaded{Model: name})
	}
	events = append(events, scanStatus(line)...)
	return events
}

func parseProgress(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, "progress=")
	if !ok {
		return 0, false
	}
	percent, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent, true
}

func parseModelLoaded(line string) (string, bool) {
	if !strings.Contains(line, "Model") || !strings.Contains(line, "loaded") {
		return "", false
	}
	match := modelNamePattern.FindStringSubmatch(line)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func scanStatus(line string) []Event {
	if _, after, found := strings.Cut(line, "Error:"); found {
		return []Event{StatusHint{Message: "Error: " + strings.TrimSpace(after)}}
	}
	for _, rule := range statusRules {
		for _, sub := range rule.substrings {
			if !strings.Contains(line, sub) {
				continue
			}
			events := []Event{StatusHint{Message: rule.hint}}
			if rule.ready {
				events = append(events, WorkerReady{})
			}
			return events
		}
	}
	return nil
}
