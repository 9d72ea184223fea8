// Package did talks to the D-ID "talks" API, which turns a narration script
// into a video of a speaking presenter.
package did

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"lesson-byte/internal/config"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/render"
)

const serviceName = "d-id"

type talkRequest struct {
	Script    talkScript `json:"script"`
	SourceURL string     `json:"source_url"`
	Config    talkConfig `json:"config"`
}

type talkScript struct {
	Type     string       `json:"type"`
	Input    string       `json:"input"`
	Provider talkProvider `json:"provider"`
}

type talkProvider struct {
	Type    string `json:"type"`
	VoiceID string `json:"voice_id"`
}

type talkConfig struct {
	ResultFormat string `json:"result_format"`
}

type talkResponse struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	ResultURL string     `json:"result_url"`
	Error     *talkError `json:"error,omitempty"`
}

type talkError struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// Backend submits talks and reports their status. It implements
// render.Backend[string], the job being the narration script.
type Backend struct {
	baseURL    string
	apiKey     string
	voiceID    string
	sourceURL  string
	httpClient *http.Client
}

// NewBackend creates a D-ID backend. httpClient may be nil.
func NewBackend(cfg config.RenderServiceConfig, httpClient *http.Client) *Backend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Backend{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		sourceURL:  cfg.SourceURL,
		httpClient: httpClient,
	}
}

func (b *Backend) Name() string { return serviceName }

func (b *Backend) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Basic "+b.apiKey)
	return h
}

// Submit creates a talk for script and returns its id.
func (b *Backend) Submit(ctx context.Context, script string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", domain.NewInvalidInputError("narration script is empty")
	}
	body := talkRequest{
		Script: talkScript{
			Type:     "text",
			Input:    script,
			Provider: talkProvider{Type: "microsoft", VoiceID: b.voiceID},
		},
		SourceURL: b.sourceURL,
		Config:    talkConfig{ResultFormat: "mp4"},
	}

	var resp talkResponse
	if err := render.DoJSON(ctx, b.httpClient, http.MethodPost, b.baseURL+"/talks", b.header(), body, &resp); err != nil {
		return "", domain.NewSubmissionError(serviceName, err)
	}
	if resp.ID == "" {
		return "", domain.NewSubmissionError(serviceName, errors.New("response has no talk id"))
	}
	return resp.ID, nil
}

// Poll fetches the talk status. "done" carries result_url; "error" and
// "rejected" carry the error description; anything else is pending.
func (b *Backend) Poll(ctx context.Context, jobID string) (domain.JobStatus, error) {
	var resp talkResponse
	if err := render.DoJSON(ctx, b.httpClient, http.MethodGet, b.baseURL+"/talks/"+url.PathEscape(jobID), b.header(), nil, &resp); err != nil {
		return domain.JobStatus{}, err
	}

	switch resp.Status {
	case "done":
		return domain.Done(resp.ResultURL), nil
	case "error", "rejected":
		reason := resp.Status
		if resp.Error != nil && resp.Error.Description != "" {
			reason = resp.Error.Description
		}
		return domain.Failed(reason), nil
	default:
		return domain.Pending(), nil
	}
}
