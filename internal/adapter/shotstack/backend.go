package shotstack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"lesson-byte/internal/config"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/render"
)

const serviceName = "shotstack"

type envelope struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Response renderResponse `json:"response"`
}

type renderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	URL    string `json:"url"`
	Error  string `json:"error"`
}

// Backend implements render.Backend[*Edit].
type Backend struct {
	renderURL  string
	apiKey     string
	httpClient *http.Client
}

// NewBackend creates a Shotstack backend for the configured stage. httpClient
// may be nil.
func NewBackend(cfg config.ShotstackConfig, httpClient *http.Client) *Backend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	stage := strings.Trim(cfg.Stage, "/")
	if stage == "" {
		stage = "stage"
	}
	return &Backend{
		renderURL:  fmt.Sprintf("%s/%s/render", strings.TrimRight(cfg.BaseURL, "/"), stage),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

func (b *Backend) Name() string { return serviceName }

func (b *Backend) header() http.Header {
	h := http.Header{}
	h.Set("x-api-key", b.apiKey)
	return h
}

// Submit queues edit for rendering and returns the render id.
func (b *Backend) Submit(ctx context.Context, edit *Edit) (string, error) {
	if edit == nil {
		return "", domain.NewInvalidInputError("timeline is empty")
	}
	var resp envelope
	if err := render.DoJSON(ctx, b.httpClient, http.MethodPost, b.renderURL, b.header(), edit, &resp); err != nil {
		return "", domain.NewSubmissionError(serviceName, err)
	}
	if resp.Response.ID == "" {
		return "", domain.NewSubmissionError(serviceName, errors.New("response has no render id"))
	}
	return resp.Response.ID, nil
}

// Poll fetches the render status: "done" carries the url, "failed" the error,
// every other status is pending.
func (b *Backend) Poll(ctx context.Context, jobID string) (domain.JobStatus, error) {
	var resp envelope
	if err := render.DoJSON(ctx, b.httpClient, http.MethodGet, b.renderURL+"/"+url.PathEscape(jobID), b.header(), nil, &resp); err != nil {
		return domain.JobStatus{}, err
	}

	switch resp.Response.Status {
	case "done":
		return domain.Done(resp.Response.URL), nil
	case "failed":
		reason := resp.Response.Error
		if reason == "" {
			reason = "render failed"
		}
		return domain.Failed(reason), nil
	default:
		return domain.Pending(), nil
	}
}
