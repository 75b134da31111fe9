package galaxy

import (
	"context"
	"log/slog"
	"time"

	"galaxy-server/internal/body"
	"galaxy-server/internal/diagnostics"
	"galaxy-server/internal/events"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/errors"

	"github.com/google/uuid"
)

type Service struct {
	repo      *Repository
	cache     Cache
	publisher events.Publisher
	cfg       config.GalaxyConfig
	logger    *slog.Logger
	newSeed   func() (uint64, error)
	now       func() time.Time
}

func NewService(repo *Repository, cache Cache, publisher events.Publisher, cfg config.GalaxyConfig, logger *slog.Logger) *Service {
	logger.Debug("Initializing galaxy service",
		"max_bodies", cfg.MaxBodies,
		"max_preview_bodies", cfg.MaxPreviewBodies,
		"diagnostics_enabled", cfg.DiagnosticsEnabled,
	)

	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		newSeed:   NewSeed,
		now:       time.Now,
	}
}

// DefaultRequest returns a request prefilled with the configured defaults.
// Handlers decode client input on top of it.
func (s *Service) DefaultRequest() GenerateRequest {
	return GenerateRequest{
		Name: s.cfg.DefaultName,
		Params: Params{
			ScaleRadius: s.cfg.ScaleRadius,
			TotalMass:   s.cfg.TotalMass,
			Count:       s.cfg.BodyCount,
			Cutoff:      s.cfg.Cutoff,
		},
	}
}

// Preview generates a galaxy without storing it.
func (s *Service) Preview(ctx context.Context, req GenerateRequest) (*Result, error) {
	logger := s.logger.With("component", "galaxy_service", "operation", "preview")

	galaxy, err := s.prepare(req, s.cfg.MaxPreviewBodies)
	if err != nil {
		return nil, err
	}
	logger = logger.With("n", galaxy.Params.Count, "seed", galaxy.Seed)
	logger.Debug("Generating preview")

	bodies, cached := s.generate(ctx, logger, galaxy.Params, galaxy.Seed)
	galaxy.setBodyCount(len(bodies))

	result := &Result{
		Galaxy:      *galaxy,
		Bodies:      Records(bodies),
		Diagnostics: s.summarize(logger, bodies),
		Cached:      cached,
	}
	logger.Info("Preview generated", "body_count", galaxy.BodyCount, "cached", cached)
	return result, nil
}

// Create generates a galaxy, stores it and announces it.
func (s *Service) Create(ctx context.Context, req GenerateRequest) (*Created, error) {
	logger := s.logger.With("component", "galaxy_service", "operation", "create")

	galaxy, err := s.prepare(req, s.cfg.MaxBodies)
	if err != nil {
		return nil, err
	}
	galaxy.ID = uuid.NewString()
	logger = logger.With("galaxy_id", galaxy.ID, "n", galaxy.Params.Count, "seed", galaxy.Seed)
	logger.Debug("Generating galaxy")

	bodies, cached := s.generate(ctx, logger, galaxy.Params, galaxy.Seed)
	galaxy.setBodyCount(len(bodies))

	if err := s.repo.CreateGalaxy(ctx, galaxy, Records(bodies)); err != nil {
		return nil, errors.WrapInternal("failed to store galaxy", err)
	}

	s.publish(ctx, logger, events.Event{
		Type:           events.GalaxyGenerated,
		GalaxyID:       galaxy.ID,
		Name:           galaxy.Name,
		BodyCount:      galaxy.BodyCount,
		RequestedCount: galaxy.Params.Count,
		Timestamp:      galaxy.CreatedAt,
	})

	logger.Info("Galaxy created", "body_count", galaxy.BodyCount, "cached", cached)
	return &Created{
		Galaxy:      *galaxy,
		Diagnostics: s.summarize(logger, bodies),
		Cached:      cached,
	}, nil
}

func (s *Service) GetGalaxy(ctx context.Context, id string) (*Galaxy, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Validationf("invalid galaxy id %q", id)
	}

	galaxy, err := s.repo.GetGalaxyByID(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load galaxy", err)
	}
	if galaxy == nil {
		return nil, errors.NotFoundf("galaxy %s not found", id)
	}
	return galaxy, nil
}

func (s *Service) ListGalaxies(ctx context.Context, limit, offset int) ([]Galaxy, error) {
	if limit <= 0 || offset < 0 {
		return nil, errors.Validationf("invalid page limit=%d offset=%d", limit, offset)
	}

	galaxies, err := s.repo.ListGalaxies(ctx, limit, offset)
	if err != nil {
		return nil, errors.WrapInternal("failed to list galaxies", err)
	}
	return galaxies, nil
}

func (s *Service) GetBodies(ctx context.Context, id string) ([]BodyInit, error) {
	if _, err := s.GetGalaxy(ctx, id); err != nil {
		return nil, err
	}

	bodies, err := s.repo.GetBodies(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load bodies", err)
	}
	return bodies, nil
}

// GetDiagnostics recomputes the summary of a stored galaxy.
func (s *Service) GetDiagnostics(ctx context.Context, id string) (*diagnostics.Summary, error) {
	logger := s.logger.With("component", "galaxy_service", "operation", "diagnostics", "galaxy_id", id)

	galaxy, err := s.GetGalaxy(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.GetBodies(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load bodies", err)
	}

	summary, err := diagnostics.Compute(Bodies(records, galaxy.Params.Cutoff), s.cfg.BarnesHutTheta)
	if err != nil {
		logger.Error("Failed to compute diagnostics", "error", err)
		return nil, errors.WrapInternal("failed to compute diagnostics", err)
	}
	return &summary, nil
}

func (s *Service) DeleteGalaxy(ctx context.Context, id string) error {
	logger := s.logger.With("component", "galaxy_service", "operation", "delete", "galaxy_id", id)

	if _, err := uuid.Parse(id); err != nil {
		return errors.Validationf("invalid galaxy id %q", id)
	}

	deleted, err := s.repo.DeleteGalaxy(ctx, id)
	if err != nil {
		return errors.WrapInternal("failed to delete galaxy", err)
	}
	if !deleted {
		return errors.NotFoundf("galaxy %s not found", id)
	}

	s.publish(ctx, logger, events.Event{
		Type:      events.GalaxyDeleted,
		GalaxyID:  id,
		Timestamp: s.now().UTC(),
	})
	logger.Info("Galaxy deleted")
	return nil
}

// prepare validates req against maxBodies and resolves its name and seed.
func (s *Service) prepare(req GenerateRequest, maxBodies int) (*Galaxy, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	if maxBodies > 0 && req.Params.Count > maxBodies {
		return nil, errors.Validationf("n must not exceed %d, got %d", maxBodies, req.Params.Count)
	}

	var seed uint64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		var err error
		if seed, err = s.newSeed(); err != nil {
			return nil, errors.WrapInternal("failed to draw seed", err)
		}
	}

	name := req.Name
	if name == "" {
		name = s.cfg.DefaultName
	}

	return &Galaxy{
		Name:                  name,
		Params:                req.Params,
		Seed:                  seed,
		BodyMass:              req.Params.BodyMass(),
		AcceptanceProbability: req.Params.AcceptanceProbability(),
		CreatedAt:             s.now().UTC(),
	}, nil
}

// generate returns the bodies for (p, seed), from the cache when possible.
// Cache failures are logged and fall through to generation.
func (s *Service) generate(ctx context.Context, logger *slog.Logger, p Params, seed uint64) ([]*body.Body, bool) {
	key := CacheKey(p, seed)

	if s.cache != nil {
		records, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("Cache lookup failed", "error", err, "key", key)
		}
		if ok {
			logger.Debug("Cache hit", "key", key)
			return Bodies(records, p.Cutoff), true
		}
	}

	start := s.now()
	bodies := GenerateWith(NewSeededSource(seed), p, body.New)
	logger.Debug("Bodies generated", "count", len(bodies), "duration", time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, Records(bodies), s.cfg.CacheTTL); err != nil {
			logger.Warn("Cache store failed", "error", err, "key", key)
		}
	}
	return bodies, false
}

func (s *Service) summarize(logger *slog.Logger, bodies []*body.Body) *diagnostics.Summary {
	if !s.cfg.DiagnosticsEnabled {
		return nil
	}
	summary, err := diagnostics.Compute(bodies, s.cfg.BarnesHutTheta)
	if err != nil {
		logger.Warn("Failed to compute diagnostics", "error", err)
		return nil
	}
	return &summary
}

// publish never fails the caller; subscribers are best effort.
func (s *Service) publish(ctx context.Context, logger *slog.Logger, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "error", err, "type", event.Type)
	}
}
