package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"eshop/mapper/internal/domain"
)

// glamiParser reads the Glami category feed: a flat list of CATEGORY
// blocks where CATEGORY_FULLNAME already carries the complete path, so
// no path synthesis happens here.
type glamiParser struct{}

func (p *glamiParser) Parse(raw string) ([]*domain.Category, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse glami feed: %w", err)
	}

	out := make([]*domain.Category, 0)
	doc.Find("category").Each(func(i int, s *goquery.Selection) {
		idText := strings.TrimSpace(s.Find("category_id").First().Text())
		id, err := strconv.Atoi(idText)
		if err != nil || id == 0 {
			return
		}

		name := strings.TrimSpace(s.Find("category_name").First().Text())
		fullName := strings.TrimSpace(s.Find("category_fullname").First().Text())
		if name == "" && fullName == "" {
			return
		}
		if fullName == "" {
			fullName = name
		}
		if name == "" {
			name = fullName
		}

		out = append(out, &domain.Category{
			ID:       id,
			Name:     name,
			FullPath: fullName,
			IsLeaf:   true,
		})
	})

	return out, nil
}
