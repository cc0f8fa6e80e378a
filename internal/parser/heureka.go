package parser

import (
	"encoding/xml"
	"fmt"
	"strings"

	"eshop/mapper/internal/domain"
	"golang.org/x/net/html/charset"
)

// heurekaParser reads the Heureka section feed: CATEGORY blocks carrying
// CATEGORY_ID and CATEGORY_NAME, nested to arbitrary depth. Paths join
// with " | ".
type heurekaParser struct{}

type heurekaCategory struct {
	ID       int               `xml:"CATEGORY_ID"`
	Name     string            `xml:"CATEGORY_NAME"`
	Children []heurekaCategory `xml:"CATEGORY"`
}

type heurekaFeed struct {
	Categories []heurekaCategory `xml:"CATEGORY"`
}

func (p *heurekaParser) Parse(doc string) ([]*domain.Category, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	// The feed sometimes declares windows-1250 in the prolog.
	dec.CharsetReader = charset.NewReaderLabel

	var feed heurekaFeed
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode heureka feed: %w", err)
	}

	return p.convert(feed.Categories, ""), nil
}

func (p *heurekaParser) convert(nodes []heurekaCategory, parentPath string) []*domain.Category {
	out := make([]*domain.Category, 0, len(nodes))
	for _, n := range nodes {
		name := strings.TrimSpace(n.Name)
		if name == "" {
			continue
		}

		path := name
		if parentPath != "" {
			path = parentPath + " | " + name
		}

		cat := &domain.Category{
			ID:       n.ID,
			Name:     name,
			FullPath: path,
			IsLeaf:   len(n.Children) == 0,
		}
		cat.Children = p.convert(n.Children, path)
		out = append(out, cat)
	}
	return out
}
