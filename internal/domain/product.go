package domain

import "strings"

// ProductForMapping is one input row of a mapping batch. A zero category
// id means the product has no mapping for that platform yet.
type ProductForMapping struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	HeurekaCategoryID int    `json:"heureka_category_id,omitempty"`
	ZboziCategoryID   int    `json:"zbozi_category_id,omitempty"`
	GoogleCategoryID  int    `json:"google_category_id,omitempty"`
	GlamiCategoryID   int    `json:"glami_category_id,omitempty"`
}

// CategoryID returns the product's existing category id for a platform,
// zero when none is set.
func (p ProductForMapping) CategoryID(platform Platform) int {
	switch platform {
	case PlatformHeureka:
		return p.HeurekaCategoryID
	case PlatformZbozi:
		return p.ZboziCategoryID
	case PlatformGoogle:
		return p.GoogleCategoryID
	case PlatformGlami:
		return p.GlamiCategoryID
	default:
		return 0
	}
}

// QueryText builds the free text used for taxonomy matching.
func (p ProductForMapping) QueryText() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return strings.TrimSpace(p.Description)
}

// MappedProduct is the batch output row: the input product plus the
// per-platform category decisions. Platforms with no decision are absent
// from MappedCategories.
type MappedProduct struct {
	ProductForMapping
	MappedCategories map[Platform]int `json:"mapped_categories"`
}

// MappingStats summarizes one batch run.
type MappingStats struct {
	Total     int              `json:"total"`
	Processed int              `json:"processed"`
	Mapped    map[Platform]int `json:"mapped"`
}
