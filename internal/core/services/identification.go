package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/artid/internal/collector"
	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/core/ports/driving"
	"github.com/custodia-labs/artid/internal/logger"
)

// Ensure IdentificationService implements the interface.
var _ driving.IdentificationService = (*IdentificationService)(nil)

// Reasons reported on NOT_IDENTIFIED outcomes.
const (
	reasonEmptyImage   = "empty image"
	reasonCancelled    = "identification cancelled"
	reasonInsufficient = "no evidence source reached its confidence threshold"
)

// WebCollector gathers page text for reverse-search evidence.
type WebCollector interface {
	Collect(ctx context.Context, evidence *domain.WebEvidence) collector.Collection
}

// IdentificationService runs the confidence-gated identification state machine:
// START, VISION_HIGH_CONF, WEB_COLLECT, TEXT_ANALYSIS, VISION_FALLBACK and
// finally NOT_IDENTIFIED.
type IdentificationService struct {
	vision    driven.VisionSource
	text      driven.TextSource
	search    driven.ReverseImageSearcher
	collector WebCollector

	mu       sync.RWMutex
	settings domain.PipelineSettings
}

// NewIdentificationService creates the orchestrator.
// The text source, reverse searcher and collector are optional (can be nil);
// without them the pipeline relies on vision evidence only.
func NewIdentificationService(
	vision driven.VisionSource,
	text driven.TextSource,
	search driven.ReverseImageSearcher,
	webCollector WebCollector,
	settings domain.PipelineSettings,
) *IdentificationService {
	return &IdentificationService{
		vision:    vision,
		text:      text,
		search:    search,
		collector: webCollector,
		settings:  settings,
	}
}

// UpdateSettings swaps the thresholds used by subsequent runs.
func (s *IdentificationService) UpdateSettings(settings domain.PipelineSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Settings returns the thresholds currently in effect.
func (s *IdentificationService) Settings() domain.PipelineSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Identify runs one image through the pipeline.
func (s *IdentificationService) Identify(ctx context.Context, image domain.Image, language string) domain.Outcome {
	cfg := s.Settings()
	trace := []domain.Stage{domain.StageStart}

	logger.Section("Identification")
	if len(image.Data) == 0 || s.vision == nil {
		return domain.NotIdentified(reasonEmptyImage, trace)
	}

	first, web := s.gather(ctx, image, language)
	if ctx.Err() != nil {
		return domain.NotIdentified(reasonCancelled, trace)
	}
	logger.Debug("vision: identified=%t confidence=%.2f title=%q", first.Identified, first.Confidence, first.Title)

	if first.Meets(cfg.HighConfidenceThreshold) {
		return domain.IdentifiedAt(domain.StageVisionHighConf, first, trace)
	}
	trace = append(trace, domain.StageVisionHighConf)

	hints := web.Hints(language)

	if web.HasPages() && s.collector != nil {
		trace = append(trace, domain.StageWebCollect)
		col := s.collector.Collect(ctx, web)
		logger.Debug("web collect: %d pages, %d chars, sufficient=%t", len(col.Pages), len(col.Text), col.Sufficient)

		if col.Sufficient && s.text != nil {
			textResult := s.text.Extract(ctx, col.Text, hints)
			logger.Debug("text: identified=%t confidence=%.2f", textResult.Identified, textResult.Confidence)
			if textResult.Meets(cfg.BaseThreshold) {
				return domain.IdentifiedAt(domain.StageTextAnalysis, textResult, trace)
			}
			trace = append(trace, domain.StageTextAnalysis)
		}
	}
	if ctx.Err() != nil {
		return domain.NotIdentified(reasonCancelled, trace)
	}

	fallback := first
	if cfg.FallbackPolicy != domain.FallbackReuse && !hints.IsEmpty() {
		fallback = s.vision.Identify(ctx, image, hints)
		logger.Debug("vision fallback: identified=%t confidence=%.2f", fallback.Identified, fallback.Confidence)
	}
	if fallback.Meets(cfg.FallbackThreshold) {
		return domain.IdentifiedAt(domain.StageVisionFallback, fallback, trace)
	}
	trace = append(trace, domain.StageVisionFallback)

	return domain.NotIdentified(reasonInsufficient, trace)
}

// gather runs the first vision call and the reverse search concurrently.
// A failed search contributes empty evidence.
func (s *IdentificationService) gather(
	ctx context.Context, image domain.Image, language string,
) (domain.EvidenceResult, *domain.WebEvidence) {
	var (
		first domain.EvidenceResult
		web   *domain.WebEvidence
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		first = s.vision.Identify(gctx, image, domain.Hints{Language: language})
		return nil
	})
	if s.search != nil {
		g.Go(func() error {
			ev, err := s.search.Search(gctx, image)
			if err != nil {
				logger.Warn("reverse image search failed: %v", err)
				return nil
			}
			web = ev
			return nil
		})
	}
	_ = g.Wait()

	if web == nil {
		web = domain.NewWebEvidence(nil, nil, nil, nil)
	}
	return first, web
}
