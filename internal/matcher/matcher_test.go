package matcher

import (
	"testing"

	"eshop/mapper/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureCategories() []domain.FlatCategory {
	return []domain.FlatCategory{
		{ID: 1, Name: "Shoes", FullPath: "Apparel | Shoes", IsLeaf: true},
		{ID: 2, Name: "Shoes accessories", FullPath: "Apparel | Shoes accessories", IsLeaf: true},
		{ID: 3, Name: "Running shoes", FullPath: "Apparel | Running shoes", IsLeaf: true},
		{ID: 4, Name: "Running shoes", FullPath: "Apparel | Sports | Running shoes", IsLeaf: true},
		{ID: 5, Name: "Laces", FullPath: "Apparel | Shoes | Laces", IsLeaf: true},
		{ID: 6, Name: "Socks", FullPath: "Apparel | Socks", IsLeaf: true},
	}
}

func TestRankTierOrdering(t *testing.T) {
	candidates := Rank(fixtureCategories(), "shoes")
	require.NotEmpty(t, candidates)

	// Exact name match on id 1 wins over prefix and substring tiers.
	assert.Equal(t, 1, candidates[0].Category.ID)
	assert.Equal(t, 118, candidates[0].Score) // 100 + (20 - 2*1)

	ranked := make(map[int]int, len(candidates))
	for _, c := range candidates {
		ranked[c.Category.ID] = c.Score
	}
	assert.Greater(t, ranked[1], ranked[2], "exact above prefix")
	assert.Greater(t, ranked[2], ranked[3], "prefix above name substring")
	// Id 5 only matches through its path.
	assert.Greater(t, ranked[3], ranked[5], "name substring above path substring")
	assert.NotContains(t, ranked, 6, "non-matching candidate excluded")
}

func TestRankSpecificityBonusFavorsShorterPath(t *testing.T) {
	candidates := Rank(fixtureCategories(), "running shoes")
	require.True(t, len(candidates) >= 2)

	// Same tier, two path depths: the shallower entry scores higher.
	assert.Equal(t, 3, candidates[0].Category.ID)
	assert.Equal(t, 4, candidates[1].Category.ID)
	assert.GreaterOrEqual(t, candidates[0].Score, candidates[1].Score)
}

func TestRankTiesKeepSourceOrder(t *testing.T) {
	categories := []domain.FlatCategory{
		{ID: 10, Name: "Lamps", FullPath: "Home | Lamps"},
		{ID: 11, Name: "Lamps", FullPath: "Garden | Lamps"},
	}

	candidates := Rank(categories, "lamps")
	require.Len(t, candidates, 2)
	assert.Equal(t, 10, candidates[0].Category.ID)
	assert.Equal(t, 11, candidates[1].Category.ID)
}

func TestSearchLimitAndDefaults(t *testing.T) {
	categories := make([]domain.FlatCategory, 0, 15)
	for i := 0; i < 15; i++ {
		categories = append(categories, domain.FlatCategory{ID: i + 1, Name: "Chair", FullPath: "Home | Chair"})
	}

	assert.Len(t, Search(categories, "chair", 3), 3)
	assert.Len(t, Search(categories, "chair", 0), DefaultLimit)
}

func TestSearchEmptyQueryAndNoMatches(t *testing.T) {
	categories := fixtureCategories()

	assert.Empty(t, Search(categories, "", 10))
	assert.Empty(t, Search(categories, "   ", 10))
	assert.Empty(t, Search(categories, "quantum flux capacitor", 10))
	assert.Empty(t, Search(nil, "shoes", 10))
}

func TestIsDecisive(t *testing.T) {
	exact := domain.FlatCategory{ID: 1, Name: "Shoes", FullPath: "Shoes"}

	assert.False(t, IsDecisive(nil))
	assert.True(t, IsDecisive(Rank([]domain.FlatCategory{exact}, "shoes")))

	// A tie at the top is not decisive.
	tied := Rank([]domain.FlatCategory{
		{ID: 1, Name: "Shoes", FullPath: "Men | Shoes"},
		{ID: 2, Name: "Shoes", FullPath: "Women | Shoes"},
	}, "shoes")
	assert.False(t, IsDecisive(tied))

	// A sub-exact top tier is not decisive either.
	weak := Rank([]domain.FlatCategory{
		{ID: 3, Name: "Shoe care", FullPath: "Shoes | Shoe care"},
	}, "shoe")
	assert.False(t, IsDecisive(weak))
}
