package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTree() []*Category {
	return []*Category{
		{
			ID: 1, Name: "Sports", FullPath: "Sports",
			Children: []*Category{
				{
					ID: 2, Name: "Shoes", FullPath: "Sports | Shoes",
					Children: []*Category{
						{ID: 3, Name: "Running shoes", FullPath: "Sports | Shoes | Running shoes", IsLeaf: true},
					},
				},
				{ID: 4, Name: "Balls", FullPath: "Sports | Balls", IsLeaf: true},
			},
		},
		{ID: 5, Name: "Books", FullPath: "Books", IsLeaf: true},
	}
}

func TestFlattenLeafOnly(t *testing.T) {
	flat := Flatten(sampleTree(), true)

	ids := make([]int, 0, len(flat))
	for _, c := range flat {
		ids = append(ids, c.ID)
	}

	// Parents are recursed into but not emitted; pre-order source order kept.
	assert.Equal(t, []int{3, 4, 5}, ids)
}

func TestFlattenAllNodes(t *testing.T) {
	flat := Flatten(sampleTree(), false)

	ids := make([]int, 0, len(flat))
	for _, c := range flat {
		ids = append(ids, c.ID)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
	assert.Equal(t, "Sports | Shoes | Running shoes", flat[2].FullPath)
}

func TestPathDepth(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"", 1},
		{"Shoes", 1},
		{"Sports | Shoes", 2},
		{"Sports | Shoes | Running shoes", 3},
		{"Apparel & Accessories > Shoes", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PathDepth(tt.path), "path %q", tt.path)
	}
}

func TestQueryTextFallsBackToDescription(t *testing.T) {
	p := ProductForMapping{Name: "  ", Description: "Leather boots"}
	assert.Equal(t, "Leather boots", p.QueryText())

	p = ProductForMapping{Name: "Red running shoes", Description: "ignored"}
	assert.Equal(t, "Red running shoes", p.QueryText())
}

func TestCategoryIDPerPlatform(t *testing.T) {
	p := ProductForMapping{HeurekaCategoryID: 10, GoogleCategoryID: 20}

	assert.Equal(t, 10, p.CategoryID(PlatformHeureka))
	assert.Equal(t, 20, p.CategoryID(PlatformGoogle))
	assert.Equal(t, 0, p.CategoryID(PlatformZbozi))
	assert.Equal(t, 0, p.CategoryID(PlatformGlami))
}
