package parser

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"eshop/mapper/internal/domain"
)

// googleParser reads the Google product taxonomy text export: one
// category per line in the form "<id> - <path>", where the path is a
// " > "-delimited ancestor chain. Comment lines start with "#".
type googleParser struct{}

func (p *googleParser) Parse(doc string) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0)

	scanner := bufio.NewScanner(strings.NewReader(doc))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idText, path, found := strings.Cut(line, " - ")
		if !found {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(idText))
		if err != nil {
			continue
		}

		path = strings.TrimSpace(path)
		segments := strings.Split(path, " > ")
		name := strings.TrimSpace(segments[len(segments)-1])
		if name == "" {
			continue
		}

		out = append(out, &domain.Category{
			ID:       id,
			Name:     name,
			FullPath: path,
			IsLeaf:   true,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read google taxonomy: %w", err)
	}

	return out, nil
}
