package domain

import (
	"regexp"
	"strings"
	"time"
)

// Concept is a short label for one learning topic found in a document.
type Concept string

// SegmentKind distinguishes prose from diagram source inside an explanation.
type SegmentKind string

const (
	SegmentProse   SegmentKind = "prose"
	SegmentDiagram SegmentKind = "diagram"
)

// ExplanationSegment is a run of markdown prose or the body of one mermaid block.
type ExplanationSegment struct {
	Kind SegmentKind `json:"kind"`
	Body string      `json:"body"`
}

// Explanation is generated once per concept and replaced when the concept changes.
type Explanation struct {
	Concept  Concept              `json:"concept"`
	Markdown string               `json:"markdown"`
	Segments []ExplanationSegment `json:"segments"`
}

// Scenario is an applied word problem that ends in a question.
type Scenario struct {
	Concept Concept `json:"concept"`
	Text    string  `json:"text"`
}

// Feedback is the evaluation of a free-text answer to a scenario.
type Feedback struct {
	Markdown string `json:"markdown"`
}

// Simulation is a self-contained HTML page with an interactive canvas.
type Simulation struct {
	Concept Concept `json:"concept"`
	HTML    string  `json:"html"`
}

// Document is an uploaded chapter stored in the output directory.
type Document struct {
	ID         string    `json:"id" db:"id"`
	SessionID  string    `json:"session_id" db:"session_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	Path       string    `json:"path" db:"path"`
	CharCount  int       `json:"char_count" db:"char_count"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

var mermaidBlock = regexp.MustCompile("(?s)```mermaid.*?```")

// NewExplanation splits markdown into prose and mermaid diagram segments,
// keeping their order. Blank prose between blocks is dropped.
func NewExplanation(concept Concept, markdown string) *Explanation {
	return &Explanation{
		Concept:  concept,
		Markdown: markdown,
		Segments: SplitDiagrams(markdown),
	}
}

// SplitDiagrams returns the ordered segments of markdown.
func SplitDiagrams(markdown string) []ExplanationSegment {
	var segments []ExplanationSegment
	addProse := func(s string) {
		if strings.TrimSpace(s) != "" {
			segments = append(segments, ExplanationSegment{Kind: SegmentProse, Body: s})
		}
	}

	last := 0
	for _, loc := range mermaidBlock.FindAllStringIndex(markdown, -1) {
		addProse(markdown[last:loc[0]])
		block := markdown[loc[0]:loc[1]]
		body := strings.TrimSuffix(strings.TrimPrefix(block, "```mermaid"), "```")
		if body = strings.TrimSpace(body); body != "" {
			segments = append(segments, ExplanationSegment{Kind: SegmentDiagram, Body: body})
		}
		last = loc[1]
	}
	addProse(markdown[last:])
	return segments
}

// Prose joins the prose segments, leaving out diagram source. Used to turn an
// explanation into a narration script.
func (e *Explanation) Prose() string {
	var parts []string
	for _, s := range e.Segments {
		if s.Kind == SegmentProse {
			parts = append(parts, strings.TrimSpace(s.Body))
		}
	}
	return strings.Join(parts, "\n\n")
}
