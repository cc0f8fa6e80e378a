// Package parser turns raw taxonomy documents into category trees. Each
// marketplace publishes a different wire format, so there is one parser
// per platform behind a common capability. Parsers are pure: no network,
// no cache, no shared state.
package parser

import (
	"fmt"

	"eshop/mapper/internal/domain"
)

// Parser converts one raw document into category trees. Flat sources
// return a list of root nodes with no children; the caller flattens with
// domain.Flatten either way.
type Parser interface {
	Parse(doc string) ([]*domain.Category, error)
}

// ForPlatform selects the parser matching a platform's feed format.
func ForPlatform(platform domain.Platform) (Parser, error) {
	switch platform {
	case domain.PlatformHeureka:
		return &heurekaParser{}, nil
	case domain.PlatformZbozi:
		return &zboziParser{}, nil
	case domain.PlatformGoogle:
		return &googleParser{}, nil
	case domain.PlatformGlami:
		return &glamiParser{}, nil
	default:
		return nil, fmt.Errorf("no parser for platform %q", platform)
	}
}
