// Package transcript models the worker's transcription payload.
//
// A payload arrives as one JSON document captured between output delimiters.
// Decoding is all-or-nothing: a malformed block yields an error and no
// partial result ever surfaces.
package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Word is a single word with timing and confidence from alignment.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

// Segment is a transcribed span of audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

// Result is one completed transcription. A new result replaces any prior one
// wholesale; results are never merged.
type Result struct {
	Transcript     string    `json:"transcript"`
	Language       string    `json:"language"`
	ModelUsed      string    `json:"model_used"`
	AudioDuration  float64   `json:"audio_duration"`
	ProcessingTime float64   `json:"processing_time"`
	Segments       []Segment `json:"segments"`
}

// Clone returns a copy sharing no memory with the receiver, including the
// segment and word slices.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	copied := *r
	if r.Segments != nil {
		copied.Segments = make([]Segment, len(r.Segments))
		for i, seg := range r.Segments {
			copied.Segments[i] = seg
			if seg.Words != nil {
				copied.Segments[i].Words = append([]Word(nil), seg.Words...)
			}
		}
	}
	return &copied
}

// Decode parses one JSON block into a Result. The error is advisory to the
// session: the worker remains usable after a malformed payload.
func Decode(raw string) (*Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("parse transcription payload: %w", err)
	}
	return &result, nil
}

// Encode renders the result in the worker's documented JSON shape.
func (r *Result) Encode() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcription payload: %w", err)
	}
	return string(data), nil
}

// PlainText returns the transcript field, falling back to joining segment
// texts when the worker omitted it.
func (r *Result) PlainText() string {
	if strings.TrimSpace(r.Transcript) != "" {
		return r.Transcript
	}
	parts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
