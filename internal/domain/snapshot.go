package domain

import "time"

// TaxonomySnapshot is one platform's flattened taxonomy at a point in
// time. Snapshots are immutable once published: a refresh replaces the
// whole value, it never mutates categories in place.
type TaxonomySnapshot struct {
	Platform   Platform       `json:"platform"`
	Categories []FlatCategory `json:"categories"`
	FetchedAt  time.Time      `json:"fetched_at"`
}
