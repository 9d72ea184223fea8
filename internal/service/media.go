package service

import (
	"context"
	"strings"
	"time"

	"lesson-byte/internal/adapter/shotstack"
	"lesson-byte/internal/cache"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/logger"
	"lesson-byte/internal/render"
	"lesson-byte/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MediaRequest identifies who asked for a render and what it narrates.
type MediaRequest struct {
	SessionID string
	Concept   domain.Concept
	Script    string
}

// MediaService renders narrated media through remote render services.
type MediaService interface {
	CreateAnimation(ctx context.Context, req MediaRequest) (*domain.MediaArtifact, error)
	CreateVideo(ctx context.Context, req MediaRequest) (*domain.MediaArtifact, error)
	Enabled(kind domain.MediaKind) bool
}

// MediaBackends are the configured render integrations. A nil backend means
// the feature is disabled.
type MediaBackends struct {
	Animation       render.Backend[string]
	AnimationPolicy render.Policy
	Video           render.Backend[*shotstack.Edit]
	VideoPolicy     render.Policy
	Timeline        shotstack.TimelineOptions
}

type mediaService struct {
	backends        MediaBackends
	animationPoller *render.Poller
	videoPoller     *render.Poller
	artifacts       domain.ArtifactRepository
	sf              singleflight.Group
	now             func() time.Time
}

// NewMediaService creates a MediaService. artifacts may be nil, in which case
// results are returned but not recorded.
func NewMediaService(backends MediaBackends, artifacts domain.ArtifactRepository) MediaService {
	return &mediaService{
		backends:        backends,
		animationPoller: render.NewPoller(backends.AnimationPolicy),
		videoPoller:     render.NewPoller(backends.VideoPolicy),
		artifacts:       artifacts,
		now:             time.Now,
	}
}

func (s *mediaService) Enabled(kind domain.MediaKind) bool {
	switch kind {
	case domain.MediaAnimation:
		return s.backends.Animation != nil
	case domain.MediaVideo:
		return s.backends.Video != nil
	default:
		return false
	}
}

// CreateAnimation renders a talking presenter reading the script.
func (s *mediaService) CreateAnimation(ctx context.Context, req MediaRequest) (*domain.MediaArtifact, error) {
	if s.backends.Animation == nil {
		return nil, domain.NewConfigurationError("talking-avatar animation (D_ID_API_KEY)")
	}
	if strings.TrimSpace(req.Script) == "" {
		return nil, domain.NewInvalidInputError("narration script is empty")
	}
	return s.dedupe(ctx, domain.MediaAnimation, req, func(ctx context.Context) (*render.Result, error) {
		return render.Run(ctx, s.animationPoller, s.backends.Animation, req.Script)
	})
}

// CreateVideo renders stock footage with subtitles and a narrated soundtrack.
func (s *mediaService) CreateVideo(ctx context.Context, req MediaRequest) (*domain.MediaArtifact, error) {
	if s.backends.Video == nil {
		return nil, domain.NewConfigurationError("stock-footage video (SHOTSTACK_API_KEY)")
	}
	edit, scenes, ok := shotstack.BuildTimeline(req.Script, s.backends.Timeline)
	if !ok {
		return nil, domain.NewInvalidInputError("narration script has no sentences")
	}
	logger.Get().Debug("Built video timeline", zap.String("session_id", req.SessionID), zap.Int("scenes", len(scenes)))
	return s.dedupe(ctx, domain.MediaVideo, req, func(ctx context.Context) (*render.Result, error) {
		return render.Run(ctx, s.videoPoller, s.backends.Video, edit)
	})
}

// dedupe collapses identical concurrent requests from one session onto a
// single job, so each job has exactly one poll loop. The poll loop is bounded
// by the poller's MaxWait, not by any one caller's context.
func (s *mediaService) dedupe(ctx context.Context, kind domain.MediaKind, req MediaRequest, run func(context.Context) (*render.Result, error)) (*domain.MediaArtifact, error) {
	key := cache.GenerateCacheKey("media", string(kind), req.SessionID, cache.Fingerprint(req.Script))
	v, shared, err := sharedCall(ctx, &s.sf, key, func(ctx context.Context) (interface{}, error) {
		res, err := run(ctx)
		if err != nil {
			return nil, err
		}
		artifact := &domain.MediaArtifact{
			ID:          util.NewULID(),
			SessionID:   req.SessionID,
			Concept:     string(req.Concept),
			Kind:        kind,
			JobID:       res.JobID,
			ArtifactURL: res.ArtifactURL,
			CreatedAt:   s.now().UTC(),
		}
		s.record(ctx, artifact)
		return artifact, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Info("Joined an in-flight render job", zap.String("kind", string(kind)), zap.String("session_id", req.SessionID))
	}
	artifact := *v.(*domain.MediaArtifact)
	return &artifact, nil
}

func (s *mediaService) record(ctx context.Context, artifact *domain.MediaArtifact) {
	if s.artifacts == nil {
		return
	}
	if err := s.artifacts.SaveArtifact(ctx, artifact); err != nil {
		logger.Get().Warn("Failed to record media artifact",
			zap.String("artifact_id", artifact.ID),
			zap.String("url", artifact.ArtifactURL),
			zap.Error(err))
	}
}
