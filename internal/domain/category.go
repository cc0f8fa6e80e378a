package domain

import "strings"

// Category is one node of a marketplace taxonomy tree. Leaves have no
// children; FullPath is the ancestor chain joined with the source's
// separator and ending in Name.
type Category struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	FullPath string      `json:"full_path"`
	IsLeaf   bool        `json:"is_leaf"`
	Children []*Category `json:"children,omitempty"`
}

// FlatCategory is a Category with its children stripped. It is the unit
// stored in taxonomy snapshots and consumed by the matcher.
type FlatCategory struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	FullPath string `json:"full_path"`
	IsLeaf   bool   `json:"is_leaf"`
}

func (c *Category) Flat() FlatCategory {
	return FlatCategory{
		ID:       c.ID,
		Name:     c.Name,
		FullPath: c.FullPath,
		IsLeaf:   c.IsLeaf,
	}
}

// Flatten walks the trees depth-first, parents before children, keeping
// source document order. With leafOnly set, nodes that have children are
// recursed into but not emitted.
func Flatten(roots []*Category, leafOnly bool) []FlatCategory {
	out := make([]FlatCategory, 0, len(roots))
	var walk func(nodes []*Category)
	walk = func(nodes []*Category) {
		for _, n := range nodes {
			if !leafOnly || len(n.Children) == 0 {
				out = append(out, n.Flat())
			}
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}

var pathSeparators = []string{" | ", " > "}

// PathDepth returns the number of segments in a full path. Sources join
// segments with either " | " or " > ".
func PathDepth(fullPath string) int {
	for _, sep := range pathSeparators {
		if strings.Contains(fullPath, sep) {
			return strings.Count(fullPath, sep) + 1
		}
	}
	return 1
}
