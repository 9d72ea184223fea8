package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lesson-byte/internal/adapter/shotstack"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fastPolicy = render.Policy{Interval: time.Millisecond, MaxWait: 5 * time.Second}

// stubBackend finishes every job on its first poll, optionally waiting for
// release first.
type stubBackend[S any] struct {
	submits   atomic.Int32
	lastJob   S
	mu        sync.Mutex
	submitErr error
	status    domain.JobStatus
	submitted chan struct{}
	release   chan struct{}
}

func (b *stubBackend[S]) Name() string { return "stub" }

func (b *stubBackend[S]) Submit(ctx context.Context, job S) (string, error) {
	b.submits.Add(1)
	b.mu.Lock()
	b.lastJob = job
	b.mu.Unlock()
	if b.submitted != nil {
		close(b.submitted)
	}
	if b.submitErr != nil {
		return "", b.submitErr
	}
	return "job-1", nil
}

func (b *stubBackend[S]) Poll(ctx context.Context, jobID string) (domain.JobStatus, error) {
	if b.release != nil {
		<-b.release
	}
	if err := ctx.Err(); err != nil {
		return domain.JobStatus{}, err
	}
	return b.status, nil
}

func TestCreateAnimation(t *testing.T) {
	ctx := context.Background()
	backend := &stubBackend[string]{status: domain.Done("https://cdn/anim.mp4")}
	repo := new(MockArtifactRepository)
	repo.On("SaveArtifact", ctx, mock.MatchedBy(func(a *domain.MediaArtifact) bool {
		return a.Kind == domain.MediaAnimation && a.JobID == "job-1" && a.SessionID == "s1" && a.Concept == "Osmosis"
	})).Return(nil)
	svc := NewMediaService(MediaBackends{Animation: backend, AnimationPolicy: fastPolicy}, repo)

	artifact, err := svc.CreateAnimation(ctx, MediaRequest{SessionID: "s1", Concept: "Osmosis", Script: "Water moves."})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn/anim.mp4", artifact.ArtifactURL)
	assert.Len(t, artifact.ID, 26)
	assert.Equal(t, "Water moves.", backend.lastJob)
	repo.AssertExpectations(t)
}

func TestCreateAnimation_Disabled(t *testing.T) {
	svc := NewMediaService(MediaBackends{}, nil)

	_, err := svc.CreateAnimation(context.Background(), MediaRequest{Script: "x"})

	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
	assert.False(t, svc.Enabled(domain.MediaAnimation))
	assert.False(t, svc.Enabled(domain.MediaVideo))
}

func TestCreateAnimation_EmptyScript(t *testing.T) {
	backend := &stubBackend[string]{}
	svc := NewMediaService(MediaBackends{Animation: backend, AnimationPolicy: fastPolicy}, nil)

	_, err := svc.CreateAnimation(context.Background(), MediaRequest{Script: "  "})

	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
	assert.Equal(t, int32(0), backend.submits.Load())
}

func TestCreateAnimation_RemoteFailure(t *testing.T) {
	backend := &stubBackend[string]{status: domain.Failed("face not detected")}
	repo := new(MockArtifactRepository)
	svc := NewMediaService(MediaBackends{Animation: backend, AnimationPolicy: fastPolicy}, repo)

	_, err := svc.CreateAnimation(context.Background(), MediaRequest{Script: "x"})

	assert.True(t, domain.IsCode(err, domain.CodeRemoteFailure))
	repo.AssertNotCalled(t, "SaveArtifact", mock.Anything, mock.Anything)
}

func TestCreateAnimation_SubmissionError(t *testing.T) {
	backend := &stubBackend[string]{submitErr: errors.New("dial tcp: refused")}
	svc := NewMediaService(MediaBackends{Animation: backend, AnimationPolicy: fastPolicy}, nil)

	_, err := svc.CreateAnimation(context.Background(), MediaRequest{Script: "x"})

	assert.True(t, domain.IsCode(err, domain.CodeSubmission))
}

func TestCreateAnimation_ConcurrentRequestsShareOneJob(t *testing.T) {
	backend := &stubBackend[string]{
		status:    domain.Done("https://cdn/shared.mp4"),
		submitted: make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc := NewMediaService(MediaBackends{Animation: backend, AnimationPolicy: fastPolicy}, nil)
	req := MediaRequest{SessionID: "s1", Script: "Same script."}

	var wg sync.WaitGroup
	results := make([]*domain.MediaArtifact, 2)
	errs := make([]error, 2)
	run := func(i int) {
		defer wg.Done()
		results[i], errs[i] = svc.CreateAnimation(context.Background(), req)
	}

	wg.Add(1)
	go run(0)
	<-backend.submitted
	wg.Add(1)
	go run(1)
	time.Sleep(20 * time.Millisecond)
	close(backend.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), backend.submits.Load())
	assert.Equal(t, results[0].ID, results[1].ID)
}

func TestCreateAnimation_CancelledCallerDoesNotFailJoiner(t *testing.T) {
	backend := &stubBackend[string]{
		status:    domain.Done("https://cdn/kept.mp4"),
		submitted: make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc := NewMediaService(MediaBackends{Animation: backend, AnimationPolicy: fastPolicy}, nil)
	req := MediaRequest{SessionID: "s1", Script: "Same script."}

	leaving, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.CreateAnimation(leaving, req)
		firstErr <- err
	}()
	<-backend.submitted

	var artifact *domain.MediaArtifact
	var joinErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		artifact, joinErr = svc.CreateAnimation(context.Background(), req)
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(backend.release)
	wg.Wait()

	require.NoError(t, joinErr)
	assert.Equal(t, "https://cdn/kept.mp4", artifact.ArtifactURL)
	assert.Equal(t, int32(1), backend.submits.Load())
}

func TestCreateVideo(t *testing.T) {
	ctx := context.Background()
	backend := &stubBackend[*shotstack.Edit]{status: domain.Done("https://cdn/video.mp4")}
	repo := new(MockArtifactRepository)
	repo.On("SaveArtifact", ctx, mock.Anything).Return(errors.New("db down"))
	svc := NewMediaService(MediaBackends{
		Video:       backend,
		VideoPolicy: fastPolicy,
		Timeline:    shotstack.DefaultTimelineOptions,
	}, repo)

	artifact, err := svc.CreateVideo(ctx, MediaRequest{SessionID: "s1", Script: "A. B. C."})

	require.NoError(t, err)
	assert.Equal(t, domain.MediaVideo, artifact.Kind)
	assert.Equal(t, "https://cdn/video.mp4", artifact.ArtifactURL)
	require.NotNil(t, backend.lastJob)
	assert.Len(t, backend.lastJob.Timeline.Tracks[0].Clips, 6)
	assert.True(t, svc.Enabled(domain.MediaVideo))
}

func TestCreateVideo_NoSentences(t *testing.T) {
	backend := &stubBackend[*shotstack.Edit]{}
	svc := NewMediaService(MediaBackends{Video: backend, VideoPolicy: fastPolicy}, nil)

	_, err := svc.CreateVideo(context.Background(), MediaRequest{Script: " . . "})

	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
	assert.Equal(t, int32(0), backend.submits.Load())
}
