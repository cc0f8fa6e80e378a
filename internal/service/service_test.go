package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"eshop/mapper/internal/cache"
	"eshop/mapper/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	lookups map[domain.Platform]cache.Lookup
}

func (s *stubSource) Get(_ context.Context, _ []domain.Platform) map[domain.Platform]cache.Lookup {
	return s.lookups
}

type stubClassifier struct {
	mu    sync.Mutex
	id    int
	err   error
	calls int
}

func (c *stubClassifier) Classify(_ context.Context, _ []domain.FlatCategory, _ string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.id, c.err
}

func (c *stubClassifier) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func heurekaTaxonomy() []domain.FlatCategory {
	return []domain.FlatCategory{
		{ID: 501, Name: "Shoes", FullPath: "Sports | Shoes", IsLeaf: true},
		{ID: 502, Name: "Running shoes", FullPath: "Sports | Shoes | Running shoes", IsLeaf: true},
	}
}

func singlePlatformSource(categories []domain.FlatCategory) *stubSource {
	return &stubSource{lookups: map[domain.Platform]cache.Lookup{
		domain.PlatformHeureka: {Categories: categories},
	}}
}

func newTestService(source *stubSource, classifier *stubClassifier) *Service {
	if classifier == nil {
		return NewService(source, nil, nil, nil, nil, 0, 0)
	}
	return NewService(source, classifier, nil, nil, nil, 0, 0)
}

func TestBatchMapProductsValidation(t *testing.T) {
	svc := newTestService(singlePlatformSource(nil), nil)

	_, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Platforms: []domain.Platform{domain.PlatformHeureka},
	})
	assert.Error(t, err, "empty products rejected")

	_, err = svc.BatchMapProducts(context.Background(), BatchRequest{
		Products: []domain.ProductForMapping{{Name: "Chair"}},
	})
	assert.Error(t, err, "empty platforms rejected")

	_, err = svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Chair"}},
		Platforms: []domain.Platform{"amazon"},
	})
	assert.Error(t, err, "unknown platform rejected")
}

func TestBatchMapProductsAssignsTopCandidate(t *testing.T) {
	svc := newTestService(singlePlatformSource(heurekaTaxonomy()), nil)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Red running shoes"}},
		Platforms: []domain.Platform{domain.PlatformHeureka},
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	// "Red running shoes" refines down to the exact "Running shoes" entry.
	assert.Equal(t, 502, result.Products[0].MappedCategories[domain.PlatformHeureka])
	assert.Equal(t, 1, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Processed)
	assert.Equal(t, 1, result.Stats.Mapped[domain.PlatformHeureka])
}

func TestBatchMapProductsNoMatchLeavesMappingAbsent(t *testing.T) {
	svc := newTestService(singlePlatformSource(heurekaTaxonomy()), nil)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Quantum flux capacitor"}},
		Platforms: []domain.Platform{domain.PlatformHeureka},
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	assert.NotContains(t, result.Products[0].MappedCategories, domain.PlatformHeureka)
	assert.Equal(t, 1, result.Stats.Processed)
	assert.Equal(t, 0, result.Stats.Mapped[domain.PlatformHeureka])
}

func TestBatchMapProductsSkipPolicy(t *testing.T) {
	svc := newTestService(singlePlatformSource(heurekaTaxonomy()), nil)

	products := []domain.ProductForMapping{
		{Name: "Running shoes", HeurekaCategoryID: 501},
		{Name: "Running shoes"},
	}

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  products,
		Platforms: []domain.Platform{domain.PlatformHeureka},
	})
	require.NoError(t, err)

	// Already-mapped product is excluded entirely without overwrite.
	require.Len(t, result.Products, 1)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Processed)

	result, err = svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:          products,
		Platforms:         []domain.Platform{domain.PlatformHeureka},
		OverwriteExisting: true,
	})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Equal(t, 502, result.Products[0].MappedCategories[domain.PlatformHeureka], "existing mapping recomputed")
}

func TestBatchMapProductsSkipNeedsEveryPlatformFilled(t *testing.T) {
	source := &stubSource{lookups: map[domain.Platform]cache.Lookup{
		domain.PlatformHeureka: {Categories: heurekaTaxonomy()},
		domain.PlatformGoogle:  {Categories: []domain.FlatCategory{{ID: 187, Name: "Shoes", FullPath: "Apparel & Accessories > Shoes", IsLeaf: true}}},
	}}
	svc := newTestService(source, nil)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Shoes", HeurekaCategoryID: 501}},
		Platforms: []domain.Platform{domain.PlatformHeureka, domain.PlatformGoogle},
	})
	require.NoError(t, err)

	// One missing slot puts the product back in, all platforms recomputed.
	require.Len(t, result.Products, 1)
	assert.Equal(t, 501, result.Products[0].MappedCategories[domain.PlatformHeureka])
	assert.Equal(t, 187, result.Products[0].MappedCategories[domain.PlatformGoogle])
}

func TestBatchMapProductsWithoutAINeverCallsClassifier(t *testing.T) {
	classifier := &stubClassifier{id: 501}
	svc := newTestService(singlePlatformSource(heurekaTaxonomy()), classifier)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "shoes"}, {Name: "running"}},
		Platforms: []domain.Platform{domain.PlatformHeureka},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, classifier.callCount())
	// Top candidate taken even for weak matches.
	assert.Equal(t, 501, result.Products[0].MappedCategories[domain.PlatformHeureka])
	assert.Equal(t, 502, result.Products[1].MappedCategories[domain.PlatformHeureka])
}

func TestBatchMapProductsEscalatesAmbiguousToAI(t *testing.T) {
	taxonomy := []domain.FlatCategory{
		{ID: 601, Name: "Boots", FullPath: "Men | Boots", IsLeaf: true},
		{ID: 602, Name: "Boots", FullPath: "Women | Boots", IsLeaf: true},
	}
	classifier := &stubClassifier{id: 602}
	svc := newTestService(singlePlatformSource(taxonomy), classifier)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Boots"}},
		Platforms: []domain.Platform{domain.PlatformHeureka},
		UseAI:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, classifier.callCount(), "top-score tie escalates")
	assert.Equal(t, 602, result.Products[0].MappedCategories[domain.PlatformHeureka])
}

func TestBatchMapProductsDecisiveMatchSkipsAI(t *testing.T) {
	classifier := &stubClassifier{id: 501}
	svc := newTestService(singlePlatformSource(heurekaTaxonomy()), classifier)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Running shoes"}},
		Platforms: []domain.Platform{domain.PlatformHeureka},
		UseAI:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, classifier.callCount(), "exact single winner needs no verification")
	assert.Equal(t, 502, result.Products[0].MappedCategories[domain.PlatformHeureka])
}

func TestBatchMapProductsRejectsInventedAIDecision(t *testing.T) {
	taxonomy := []domain.FlatCategory{
		{ID: 601, Name: "Boots", FullPath: "Men | Boots", IsLeaf: true},
		{ID: 602, Name: "Boots", FullPath: "Women | Boots", IsLeaf: true},
	}
	classifier := &stubClassifier{id: 999}
	svc := newTestService(singlePlatformSource(taxonomy), classifier)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Boots"}},
		Platforms: []domain.Platform{domain.PlatformHeureka},
		UseAI:     true,
	})
	require.NoError(t, err)

	assert.NotContains(t, result.Products[0].MappedCategories, domain.PlatformHeureka)
}

func TestBatchMapProductsAIFailureDegradesToAbsent(t *testing.T) {
	taxonomy := []domain.FlatCategory{
		{ID: 601, Name: "Boots", FullPath: "Men | Boots", IsLeaf: true},
		{ID: 602, Name: "Boots", FullPath: "Women | Boots", IsLeaf: true},
	}
	classifier := &stubClassifier{err: errors.New("model timeout")}
	svc := newTestService(singlePlatformSource(taxonomy), classifier)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Boots"}},
		Platforms: []domain.Platform{domain.PlatformHeureka},
		UseAI:     true,
	})
	require.NoError(t, err, "one failed escalation never fails the batch")

	assert.NotContains(t, result.Products[0].MappedCategories, domain.PlatformHeureka)
	assert.Equal(t, 1, result.Stats.Processed)
}

func TestBatchMapProductsFailedPlatformStaysAbsent(t *testing.T) {
	source := &stubSource{lookups: map[domain.Platform]cache.Lookup{
		domain.PlatformHeureka: {Categories: heurekaTaxonomy()},
		domain.PlatformZbozi:   {Err: errors.New("source down")},
	}}
	svc := newTestService(source, nil)

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Running shoes"}},
		Platforms: []domain.Platform{domain.PlatformHeureka, domain.PlatformZbozi},
	})
	require.NoError(t, err)

	assert.Equal(t, 502, result.Products[0].MappedCategories[domain.PlatformHeureka])
	assert.NotContains(t, result.Products[0].MappedCategories, domain.PlatformZbozi)
}

func TestBatchMapProductsProgressIsMonotonic(t *testing.T) {
	svc := newTestService(singlePlatformSource(heurekaTaxonomy()), nil)

	products := make([]domain.ProductForMapping, 5)
	for i := range products {
		products[i] = domain.ProductForMapping{Name: "Running shoes"}
	}

	var mu sync.Mutex
	var seen []int

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  products,
		Platforms: []domain.Platform{domain.PlatformHeureka},
		OnProgress: func(processed int) {
			mu.Lock()
			seen = append(seen, processed)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 5)
	for i, processed := range seen {
		assert.Equal(t, i+1, processed)
	}
	assert.Equal(t, 5, result.Stats.Processed)
}

func TestBatchMapProductsCancelledContextReturnsPartialResult(t *testing.T) {
	svc := newTestService(singlePlatformSource(heurekaTaxonomy()), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.BatchMapProducts(ctx, BatchRequest{
		Products:  []domain.ProductForMapping{{Name: "Running shoes"}},
		Platforms: []domain.Platform{domain.PlatformHeureka},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result, "what was done stays available")
	assert.Equal(t, 0, result.Stats.Processed)
}

func TestBatchMapProductsPreservesInputOrder(t *testing.T) {
	svc := newTestService(singlePlatformSource(heurekaTaxonomy()), nil)

	products := []domain.ProductForMapping{
		{ID: "a", Name: "Running shoes"},
		{ID: "b", Name: "Shoes"},
		{ID: "c", Name: "Running shoes"},
	}

	result, err := svc.BatchMapProducts(context.Background(), BatchRequest{
		Products:  products,
		Platforms: []domain.Platform{domain.PlatformHeureka},
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 3)

	for i, p := range products {
		assert.Equal(t, p.ID, result.Products[i].ID)
	}
}
