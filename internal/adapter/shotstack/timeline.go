// Package shotstack builds stock-footage timelines from a narration script and
// renders them with the Shotstack edit API.
package shotstack

import (
	"strings"
)

// Edit is the request body of a render call.
type Edit struct {
	Timeline Timeline `json:"timeline"`
	Output   Output   `json:"output"`
}

type Timeline struct {
	Background string     `json:"background"`
	Tracks     []Track    `json:"tracks"`
	Soundtrack Soundtrack `json:"soundtrack"`
}

type Track struct {
	Clips []Clip `json:"clips"`
}

// Clip is one asset placed on the timeline. Start and Length are seconds.
type Clip struct {
	Asset  Asset   `json:"asset"`
	Start  float64 `json:"start"`
	Length float64 `json:"length"`
}

// Asset covers the two asset kinds used here: stock video and title text.
type Asset struct {
	Type       string `json:"type"`
	Provider   string `json:"provider,omitempty"`
	Search     string `json:"search,omitempty"`
	Text       string `json:"text,omitempty"`
	Style      string `json:"style,omitempty"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

// Soundtrack narrates Src with a hosted text-to-speech voice.
type Soundtrack struct {
	Effect   string `json:"effect"`
	Src      string `json:"src"`
	Provider string `json:"provider"`
	Voice    string `json:"voice"`
}

type Output struct {
	Format     string `json:"format"`
	Resolution string `json:"resolution"`
}

// Scene is one sentence of the script and its slot on the timeline.
type Scene struct {
	Sentence string
	Start    float64
	Length   float64
}

// TimelineOptions controls scene pacing and output.
type TimelineOptions struct {
	MinSceneSeconds float64
	WordsPerSecond  float64
	Voice           string
	Resolution      string
}

// DefaultTimelineOptions paces narration at three words per second with a
// three second floor.
var DefaultTimelineOptions = TimelineOptions{
	MinSceneSeconds: 3,
	WordsPerSecond:  3,
	Voice:           "linda",
	Resolution:      "sd",
}

func (o TimelineOptions) withDefaults() TimelineOptions {
	if o.MinSceneSeconds <= 0 {
		o.MinSceneSeconds = DefaultTimelineOptions.MinSceneSeconds
	}
	if o.WordsPerSecond <= 0 {
		o.WordsPerSecond = DefaultTimelineOptions.WordsPerSecond
	}
	if o.Voice == "" {
		o.Voice = DefaultTimelineOptions.Voice
	}
	if o.Resolution == "" {
		o.Resolution = DefaultTimelineOptions.Resolution
	}
	return o
}

// SplitScenes splits script on '.', drops blank sentences and lays the rest
// end to end. Each scene lasts max(MinSceneSeconds, words/WordsPerSecond).
func SplitScenes(script string, opts TimelineOptions) []Scene {
	opts = opts.withDefaults()

	var scenes []Scene
	start := 0.0
	for _, part := range strings.Split(script, ".") {
		sentence := strings.TrimSpace(part)
		if sentence == "" {
			continue
		}
		length := float64(len(strings.Fields(sentence))) / opts.WordsPerSecond
		if length < opts.MinSceneSeconds {
			length = opts.MinSceneSeconds
		}
		scenes = append(scenes, Scene{Sentence: sentence, Start: start, Length: length})
		start += length
	}
	return scenes
}

// BuildTimeline returns the edit for script: per scene a stock clip searched
// by the sentence and a subtitle of it, over a narrated soundtrack. ok is
// false when the script has no sentences.
func BuildTimeline(script string, opts TimelineOptions) (edit *Edit, scenes []Scene, ok bool) {
	opts = opts.withDefaults()
	scenes = SplitScenes(script, opts)
	if len(scenes) == 0 {
		return nil, nil, false
	}

	clips := make([]Clip, 0, 2*len(scenes))
	for _, s := range scenes {
		clips = append(clips,
			Clip{
				Asset:  Asset{Type: "stock", Provider: "pexels", Search: s.Sentence},
				Start:  s.Start,
				Length: s.Length,
			},
			Clip{
				Asset: Asset{
					Type:       "title",
					Text:       s.Sentence,
					Style:      "subtitle",
					Color:      "#ffffff",
					Background: "#00000066",
				},
				Start:  s.Start,
				Length: s.Length,
			},
		)
	}

	edit = &Edit{
		Timeline: Timeline{
			Background: "#000000",
			Tracks:     []Track{{Clips: clips}},
			Soundtrack: Soundtrack{
				Effect:   "fadeInFadeOut",
				Src:      script,
				Provider: "shotstack",
				Voice:    opts.Voice,
			},
		},
		Output: Output{Format: "mp4", Resolution: opts.Resolution},
	}
	return edit, scenes, true
}
