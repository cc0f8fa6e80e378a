package parser

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"eshop/mapper/internal/domain"
)

// zboziParser reads the Zboží.cz category API: a JSON document with
// nested nodes. Nodes may carry a pre-computed fullName which is used
// verbatim; otherwise the path is synthesized with " > ". Nodes without
// an id are structural only and are not emitted, but their children are
// still traversed with the accumulated path.
type zboziParser struct{}

type zboziNode struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	FullName string      `json:"fullName"`
	Children []zboziNode `json:"children"`
}

type zboziDocument struct {
	Categories []zboziNode `json:"categories"`
}

func (p *zboziParser) Parse(doc string) ([]*domain.Category, error) {
	var parsed zboziDocument
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		// Some exports are a bare array without the wrapper object.
		var nodes []zboziNode
		if arrErr := json.Unmarshal([]byte(doc), &nodes); arrErr != nil {
			return nil, fmt.Errorf("failed to decode zbozi categories: %w", err)
		}
		parsed.Categories = nodes
	}

	return p.convert(parsed.Categories, ""), nil
}

func (p *zboziParser) convert(nodes []zboziNode, parentPath string) []*domain.Category {
	out := make([]*domain.Category, 0, len(nodes))
	for _, n := range nodes {
		name := strings.TrimSpace(n.Name)

		path := strings.TrimSpace(n.FullName)
		if path == "" {
			path = name
			if parentPath != "" {
				path = parentPath + " > " + name
			}
		}

		children := p.convert(n.Children, path)

		if n.ID == 0 {
			// Structural node: skip it but keep its subtree.
			out = append(out, children...)
			continue
		}

		cat := &domain.Category{
			ID:       n.ID,
			Name:     name,
			FullPath: path,
			IsLeaf:   len(n.Children) == 0,
			Children: children,
		}
		out = append(out, cat)
	}
	return out
}
