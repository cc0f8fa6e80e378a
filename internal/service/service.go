package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eshop/mapper/internal/ai"
	"eshop/mapper/internal/cache"
	"eshop/mapper/internal/domain"
	"eshop/mapper/internal/domain/event"
	"eshop/mapper/internal/events"
	"eshop/mapper/internal/matcher"
	"eshop/mapper/internal/repository"
	"eshop/mapper/internal/state"

	log "github.com/sirupsen/logrus"
)

// TaxonomySource serves cached platform taxonomies to the pipeline.
type TaxonomySource interface {
	Get(ctx context.Context, platforms []domain.Platform) map[domain.Platform]cache.Lookup
}

type Service struct {
	taxonomies         TaxonomySource
	classifier         ai.Classifier
	repository         repository.ProductRepository
	events             events.Publisher
	stateManager       state.StateManager
	checkpointInterval int
	maxCandidates      int
}

func NewService(
	taxonomies TaxonomySource,
	classifier ai.Classifier,
	repository repository.ProductRepository,
	events events.Publisher,
	stateManager state.StateManager,
	checkpointInterval int,
	maxCandidates int,
) *Service {
	if checkpointInterval <= 0 {
		checkpointInterval = 25
	}
	if maxCandidates <= 0 {
		maxCandidates = 5
	}
	return &Service{
		taxonomies:         taxonomies,
		classifier:         classifier,
		repository:         repository,
		events:             events,
		stateManager:       stateManager,
		checkpointInterval: checkpointInterval,
		maxCandidates:      maxCandidates,
	}
}

// BatchRequest describes one mapping run.
type BatchRequest struct {
	RunID             string
	Products          []domain.ProductForMapping
	Platforms         []domain.Platform
	UseAI             bool
	OverwriteExisting bool

	// OnProgress, when set, receives a monotonically increasing count of
	// completed products. Delivery is decoupled from the mapping loop.
	OnProgress func(processed int)
}

// BatchResult carries the mapped products, in the same order as the
// processed subset of the input, plus the run statistics.
type BatchResult struct {
	RunID    string
	Products []domain.MappedProduct
	Stats    domain.MappingStats
}

// BatchMapProducts assigns a category id per requested platform to every
// product that needs one. On context cancellation the products mapped so
// far are returned together with the context error.
func (s *Service) BatchMapProducts(ctx context.Context, req BatchRequest) (result *BatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("batch mapping failed: %v", r)
		}
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("run-%d", time.Now().UnixNano())
	}

	if req.UseAI && s.classifier == nil {
		log.Warnf("⚠️ AI verification requested but no classifier is configured; escalated decisions will stay unmapped")
	}

	lookups := s.taxonomies.Get(ctx, req.Platforms)
	for _, platform := range req.Platforms {
		if lookups[platform].Err != nil {
			log.Warnf("⚠️ No taxonomy available for %s, its mappings will stay absent: %v", platform, lookups[platform].Err)
		}
	}

	selected := selectProducts(req.Products, req.Platforms, req.OverwriteExisting)
	log.Infof("🔄 Mapping run %s: %d of %d products need work on %d platforms",
		runID, len(selected), len(req.Products), len(req.Platforms))

	start := 0
	if s.stateManager != nil && req.RunID != "" {
		if idx, stateErr := s.stateManager.GetLastProcessedIndex(ctx, runID); stateErr != nil {
			log.Errorf("❌ Failed to read resume point for run %s: %v", runID, stateErr)
		} else if idx > 0 && idx < len(selected) {
			start = idx
			log.Infof("🔄 Resuming run %s from product %d", runID, idx)
		}
	}

	result = &BatchResult{
		RunID:    runID,
		Products: make([]domain.MappedProduct, 0, len(selected)-start),
		Stats: domain.MappingStats{
			Total:  len(req.Products),
			Mapped: make(map[domain.Platform]int, len(req.Platforms)),
		},
	}

	// Progress is delivered by a single consumer goroutine so the count
	// stays monotonic and a slow callback never stalls the mapping loop.
	progressChan := make(chan int, len(selected))
	progressDone := make(chan struct{})
	startedAt := time.Now()
	go func() {
		defer close(progressDone)
		for processed := range progressChan {
			if req.OnProgress != nil {
				req.OnProgress(processed)
			}
			if s.events != nil {
				ev := &event.RunProgressEvent{RunID: runID, Processed: processed, Total: len(selected)}
				if _, pubErr := s.events.Publish(context.Background(), ev); pubErr != nil {
					log.Debugf("Failed to publish progress event: %v", pubErr)
				}
			}
		}
	}()

	interrupted := false
	for i := start; i < len(selected); i++ {
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		product := selected[i]
		mapped := domain.MappedProduct{
			ProductForMapping: product,
			MappedCategories:  make(map[domain.Platform]int, len(req.Platforms)),
		}

		for _, platform := range req.Platforms {
			lookup := lookups[platform]
			if len(lookup.Categories) == 0 {
				continue
			}

			id := s.decideCategory(ctx, product, lookup.Categories, req.UseAI)
			if id == 0 {
				continue
			}
			mapped.MappedCategories[platform] = id
			result.Stats.Mapped[platform]++
		}

		result.Products = append(result.Products, mapped)
		result.Stats.Processed++

		if s.repository != nil {
			if saveErr := s.repository.SaveMappedProduct(ctx, runID, &mapped); saveErr != nil {
				log.Errorf("❌ Failed to save mapped product %s: %v", product.ID, saveErr)
			}
		}

		progressChan <- result.Stats.Processed

		if s.stateManager != nil && (i+1)%s.checkpointInterval == 0 {
			if stateErr := s.stateManager.SetLastProcessedIndex(ctx, runID, i+1); stateErr != nil {
				log.Errorf("❌ Failed to checkpoint run %s: %v", runID, stateErr)
			}
		}
	}

	close(progressChan)
	<-progressDone

	if interrupted && s.stateManager != nil {
		if stateErr := s.stateManager.SetLastProcessedIndex(context.Background(), runID, start+result.Stats.Processed); stateErr != nil {
			log.Errorf("❌ Failed to checkpoint interrupted run %s: %v", runID, stateErr)
		}
	}

	if s.events != nil {
		ev := &event.RunCompletedEvent{
			RunID:       runID,
			Stats:       result.Stats,
			DurationSec: time.Since(startedAt).Seconds(),
			Interrupted: interrupted,
		}
		if _, pubErr := s.events.Publish(context.Background(), ev); pubErr != nil {
			log.Debugf("Failed to publish completion event: %v", pubErr)
		}
	}

	log.Infof("✅ Mapping run %s finished: %d/%d products processed", runID, result.Stats.Processed, len(selected))

	if interrupted {
		return result, ctx.Err()
	}
	return result, nil
}

func validateRequest(req BatchRequest) error {
	if len(req.Products) == 0 {
		return fmt.Errorf("no products to map")
	}
	if len(req.Platforms) == 0 {
		return fmt.Errorf("no platforms requested")
	}
	for _, platform := range req.Platforms {
		if !platform.Valid() {
			return fmt.Errorf("unknown platform %q", platform)
		}
	}
	return nil
}

// selectProducts applies the skip policy: without overwrite, a product
// already holding a non-empty id for every requested platform is
// excluded; one missing slot puts the whole product (all platforms) back
// into the run.
func selectProducts(products []domain.ProductForMapping, platforms []domain.Platform, overwriteExisting bool) []domain.ProductForMapping {
	if overwriteExisting {
		return products
	}

	selected := make([]domain.ProductForMapping, 0, len(products))
	for _, product := range products {
		needsWork := false
		for _, platform := range platforms {
			if product.CategoryID(platform) == 0 {
				needsWork = true
				break
			}
		}
		if needsWork {
			selected = append(selected, product)
		}
	}
	return selected
}

// decideCategory picks a category id for one product on one platform,
// zero meaning no decision. Without AI the matcher's top candidate wins
// outright; with AI a non-decisive top is escalated and only an id from
// the shortlist is accepted.
func (s *Service) decideCategory(ctx context.Context, product domain.ProductForMapping, categories []domain.FlatCategory, useAI bool) int {
	candidates := rankWithRefinement(categories, product.QueryText())
	if len(candidates) == 0 {
		return 0
	}

	if !useAI || matcher.IsDecisive(candidates) {
		return candidates[0].Category.ID
	}

	if s.classifier == nil {
		return 0
	}

	shortlist := make([]domain.FlatCategory, 0, s.maxCandidates)
	for _, c := range candidates {
		shortlist = append(shortlist, c.Category)
		if len(shortlist) == s.maxCandidates {
			break
		}
	}

	id, err := s.classifier.Classify(ctx, shortlist, product.QueryText())
	if err != nil {
		log.Warnf("⚠️ AI verification failed for product %q: %v", product.Name, err)
		return 0
	}
	for _, c := range shortlist {
		if c.ID == id {
			return id
		}
	}
	return 0
}

// rankWithRefinement matches the full query text first and, when nothing
// scores, retries with the leading token stripped. Product names tend to
// open with brand or attribute words ("Red running shoes") that no
// taxonomy entry carries.
func rankWithRefinement(categories []domain.FlatCategory, query string) []matcher.Candidate {
	tokens := strings.Fields(query)
	for i := 0; i < len(tokens); i++ {
		if candidates := matcher.Rank(categories, strings.Join(tokens[i:], " ")); len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}
