package render

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"lesson-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pollStep struct {
	status domain.JobStatus
	err    error
}

// scriptedSource returns its steps in order and counts polls.
type scriptedSource struct {
	steps    []pollStep
	polls    int
	submitID string
	subErr   error
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) Poll(ctx context.Context, jobID string) (domain.JobStatus, error) {
	if s.polls >= len(s.steps) {
		return domain.JobStatus{}, errors.New("polled past the end of the script")
	}
	step := s.steps[s.polls]
	s.polls++
	return step.status, step.err
}

func (s *scriptedSource) Submit(ctx context.Context, job string) (string, error) {
	return s.submitID, s.subErr
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func newTestPoller(policy Policy) (*Poller, *recordingSleeper) {
	rec := &recordingSleeper{}
	p := NewPoller(policy)
	p.sleep = rec.sleep
	p.jitter = func(d time.Duration) time.Duration { return d }
	return p, rec
}

var testPolicy = Policy{
	Interval:            5 * time.Second,
	MaxTransientRetries: 2,
	BackoffBase:         time.Second,
	BackoffMax:          4 * time.Second,
}

func TestAwait_DoneAfterThreePolls(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{status: domain.Pending()},
		{status: domain.Pending()},
		{status: domain.Done("https://cdn.example/video.mp4")},
	}}
	p, rec := newTestPoller(testPolicy)

	url, err := p.Await(context.Background(), src, "job-1")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/video.mp4", url)
	assert.Equal(t, 3, src.polls)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, rec.waits)
}

func TestAwait_FailedStopsImmediately(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{status: domain.Pending()},
		{status: domain.Failed("voice not supported")},
		{status: domain.Done("never reached")},
	}}
	p, _ := newTestPoller(testPolicy)

	url, err := p.Await(context.Background(), src, "job-2")

	assert.Empty(t, url)
	assert.True(t, domain.IsCode(err, domain.CodeRemoteFailure))
	assert.ErrorContains(t, err, "voice not supported")
	assert.Equal(t, 2, src.polls)
}

func TestAwait_TransientErrorsRetriedWithBackoff(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{err: &HTTPStatusError{StatusCode: 503}},
		{err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}},
		{status: domain.Pending()},
		{status: domain.Done("https://cdn.example/a.mp4")},
	}}
	p, rec := newTestPoller(testPolicy)

	url, err := p.Await(context.Background(), src, "job-3")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.mp4", url)
	assert.Equal(t, 4, src.polls)
	assert.Equal(t, []time.Duration{5 * time.Second, time.Second, 2 * time.Second, 5 * time.Second}, rec.waits)
}

func TestAwait_TooManyTransientErrors(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{err: &HTTPStatusError{StatusCode: 502}},
		{err: &HTTPStatusError{StatusCode: 502}},
		{err: &HTTPStatusError{StatusCode: 502}},
		{status: domain.Done("never reached")},
	}}
	p, _ := newTestPoller(testPolicy)

	_, err := p.Await(context.Background(), src, "job-4")

	assert.True(t, domain.IsCode(err, domain.CodeTransport))
	assert.Equal(t, 3, src.polls)
}

func TestAwait_NonTransientErrorAborts(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{err: &HTTPStatusError{StatusCode: 404, Body: "not found"}},
	}}
	p, _ := newTestPoller(testPolicy)

	_, err := p.Await(context.Background(), src, "job-5")

	assert.True(t, domain.IsCode(err, domain.CodeTransport))
	assert.Equal(t, 1, src.polls)
}

func TestAwait_MaxWaitExceeded(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{
		{status: domain.Pending()},
		{status: domain.Pending()},
	}}
	policy := testPolicy
	policy.Interval = 20 * time.Millisecond
	policy.MaxWait = 30 * time.Millisecond
	p := NewPoller(policy)

	_, err := p.Await(context.Background(), src, "job-6")

	assert.True(t, domain.IsCode(err, domain.CodeRenderTimeout))
	assert.Equal(t, 1, src.polls)
}

func TestAwait_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _ := newTestPoller(testPolicy)

	_, err := p.Await(ctx, &scriptedSource{}, "job-7")

	assert.True(t, domain.IsCode(err, domain.CodeTransport))
	assert.ErrorContains(t, err, "cancelled")
}

func TestAwait_DoneWithoutURL(t *testing.T) {
	src := &scriptedSource{steps: []pollStep{{status: domain.Done("")}}}
	p, _ := newTestPoller(testPolicy)

	_, err := p.Await(context.Background(), src, "job-8")

	assert.True(t, domain.IsCode(err, domain.CodeFormat))
}

func TestRun_SubmitThenAwait(t *testing.T) {
	src := &scriptedSource{submitID: "render-9", steps: []pollStep{{status: domain.Done("https://cdn.example/b.mp4")}}}
	p, _ := newTestPoller(testPolicy)

	res, err := Run[string](context.Background(), p, src, "script")

	require.NoError(t, err)
	assert.Equal(t, &Result{JobID: "render-9", ArtifactURL: "https://cdn.example/b.mp4"}, res)
}

func TestRun_SubmitFailure(t *testing.T) {
	src := &scriptedSource{subErr: errors.New("dial tcp: no such host")}
	p, _ := newTestPoller(testPolicy)

	res, err := Run[string](context.Background(), p, src, "script")

	assert.Nil(t, res)
	assert.True(t, domain.IsCode(err, domain.CodeSubmission))
	assert.Equal(t, 0, src.polls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&HTTPStatusError{StatusCode: 429}))
	assert.True(t, IsTransient(&HTTPStatusError{StatusCode: 500}))
	assert.False(t, IsTransient(&HTTPStatusError{StatusCode: 401}))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("decode failure")))
	assert.False(t, IsTransient(nil))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextBackoff(time.Second, 10*time.Second))
	assert.Equal(t, 10*time.Second, nextBackoff(8*time.Second, 10*time.Second))
	assert.Equal(t, time.Second, nextBackoff(0, 0))
}
