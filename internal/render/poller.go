// Package render drives the submit-then-poll protocol of asynchronous media
// rendering services.
package render

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"lesson-byte/internal/config"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/logger"

	"go.uber.org/zap"
)

// StatusSource reports the state of one remote job.
type StatusSource interface {
	Name() string
	Poll(ctx context.Context, jobID string) (domain.JobStatus, error)
}

// Backend is a remote render service that accepts job specs of type S.
type Backend[S any] interface {
	StatusSource
	Submit(ctx context.Context, job S) (string, error)
}

// Policy bounds one polling loop.
type Policy struct {
	// Interval is the wait before every regular poll.
	Interval time.Duration
	// MaxWait bounds the whole loop; zero means no limit beyond ctx.
	MaxWait time.Duration
	// MaxTransientRetries is the number of consecutive transient poll
	// failures tolerated before giving up.
	MaxTransientRetries int
	BackoffBase         time.Duration
	BackoffMax          time.Duration
}

// PolicyFromConfig converts a configured poll section.
func PolicyFromConfig(c config.PollConfig) Policy {
	return Policy{
		Interval:            c.Interval,
		MaxWait:             c.MaxWait,
		MaxTransientRetries: c.MaxTransientRetries,
		BackoffBase:         c.BackoffBase,
		BackoffMax:          c.BackoffMax,
	}
}

// Poller waits for render jobs to reach a terminal state.
type Poller struct {
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(d time.Duration) time.Duration
}

// NewPoller creates a new Poller
func NewPoller(policy Policy) *Poller {
	return &Poller{
		policy: policy,
		sleep:  sleepContext,
		jitter: jitter,
	}
}

// Result is the outcome of a finished job.
type Result struct {
	JobID       string
	ArtifactURL string
}

// Run submits job to backend and waits for it to finish.
func Run[S any](ctx context.Context, p *Poller, backend Backend[S], job S) (*Result, error) {
	jobID, err := backend.Submit(ctx, job)
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.NewSubmissionError(backend.Name(), err)
	}
	logger.Get().Info("Render job submitted", zap.String("service", backend.Name()), zap.String("job_id", jobID))

	url, err := p.Await(ctx, backend, jobID)
	if err != nil {
		return nil, err
	}
	return &Result{JobID: jobID, ArtifactURL: url}, nil
}

// Await polls jobID until it is done or failed. It waits Interval before each
// poll, so a job that finishes on the third poll is polled exactly three times.
// Transient poll errors are retried with exponential backoff; a remote
// failure status ends the loop with REMOTE_FAILURE.
func (p *Poller) Await(ctx context.Context, src StatusSource, jobID string) (string, error) {
	l := logger.Get().With(zap.String("service", src.Name()), zap.String("job_id", jobID))

	loopCtx := ctx
	if p.policy.MaxWait > 0 {
		var cancel context.CancelFunc
		loopCtx, cancel = context.WithTimeout(ctx, p.policy.MaxWait)
		defer cancel()
	}

	wait := p.policy.Interval
	backoff := p.policy.BackoffBase
	transientFailures := 0
	polls := 0

	for {
		if err := p.sleep(loopCtx, wait); err != nil {
			return "", p.stopped(ctx, jobID, err)
		}

		status, err := src.Poll(loopCtx, jobID)
		polls++
		if err != nil {
			if ctx.Err() != nil || loopCtx.Err() != nil {
				return "", p.stopped(ctx, jobID, err)
			}
			if !IsTransient(err) {
				l.Error("Render status check failed", zap.Int("polls", polls), zap.Error(err))
				return "", domain.NewTransportError("render status check failed", err)
			}
			transientFailures++
			if transientFailures > p.policy.MaxTransientRetries {
				l.Error("Giving up after repeated transient failures",
					zap.Int("failures", transientFailures), zap.Error(err))
				return "", domain.NewTransportError("render status check kept failing", err)
			}
			wait = p.jitter(backoff)
			if ra := retryAfter(err); ra > wait {
				wait = ra
			}
			backoff = nextBackoff(backoff, p.policy.BackoffMax)
			l.Warn("Transient render status failure, retrying",
				zap.Int("attempt", transientFailures),
				zap.Int("max_retries", p.policy.MaxTransientRetries),
				zap.Duration("sleep", wait),
				zap.Error(err))
			continue
		}

		transientFailures = 0
		backoff = p.policy.BackoffBase
		wait = p.policy.Interval

		switch status.State {
		case domain.JobDone:
			if status.ArtifactURL == "" {
				return "", domain.NewFormatError("render finished without a result URL", nil)
			}
			l.Info("Render job finished", zap.Int("polls", polls), zap.String("url", status.ArtifactURL))
			return status.ArtifactURL, nil
		case domain.JobFailed:
			l.Warn("Render job failed", zap.Int("polls", polls), zap.String("reason", status.Reason))
			return "", domain.NewRemoteFailureError(src.Name(), status.Reason)
		default:
			l.Debug("Render job still pending", zap.Int("polls", polls))
		}
	}
}

// stopped classifies why the loop ended early: the caller's context, or the
// poller's own MaxWait.
func (p *Poller) stopped(parent context.Context, jobID string, err error) error {
	if parentErr := parent.Err(); parentErr != nil {
		return domain.NewTransportError("render polling cancelled", parentErr)
	}
	if errors.Is(err, context.DeadlineExceeded) || p.policy.MaxWait > 0 {
		return domain.NewRenderTimeoutError(jobID, err)
	}
	return domain.NewTransportError("render polling stopped", err)
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next <= 0 {
		next = time.Second
	}
	if max > 0 && next > max {
		next = max
	}
	return next
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jitter spreads d by ±20%.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	delta := float64(d) * 0.2
	return time.Duration(float64(d) - delta + rand.Float64()*2*delta)
}
