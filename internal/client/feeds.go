package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"eshop/mapper/internal/config"
	"eshop/mapper/internal/domain"
	"eshop/mapper/internal/parser"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// FetchError reports a taxonomy endpoint answering with a non-2xx
// status. It lets callers tell "source down" apart from "source has
// zero categories".
type FetchError struct {
	Platform   domain.Platform
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s taxonomy: HTTP error: %d %s", e.Platform, e.StatusCode, e.Status)
}

// FetchResult is one platform's outcome of a concurrent fetch-all. On
// failure Err is set and Categories is empty.
type FetchResult struct {
	Categories []domain.FlatCategory
	Err        error
}

type TaxonomyClient interface {
	FetchCategories(ctx context.Context, platform domain.Platform) ([]domain.FlatCategory, error)
	FetchAll(ctx context.Context, platforms []domain.Platform) map[domain.Platform]FetchResult
}

type taxonomyClient struct {
	rl         ratelimit.Limiter
	config     config.SourcesConfig
	httpClient *resty.Client
}

func NewTaxonomyClient(cfg config.SourcesConfig) TaxonomyClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "application/xml,application/json,text/plain;q=0.9,*/*;q=0.8").
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &taxonomyClient{
		rl:         ratelimit.New(rps),
		config:     cfg,
		httpClient: client,
	}
}

func (c *taxonomyClient) FetchCategories(ctx context.Context, platform domain.Platform) ([]domain.FlatCategory, error) {
	url, err := c.config.FeedURL(platform)
	if err != nil {
		return nil, err
	}

	doc, err := c.fetchDocument(ctx, platform, url)
	if err != nil {
		return nil, err
	}

	p, err := parser.ForPlatform(platform)
	if err != nil {
		return nil, err
	}

	roots, err := p.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s taxonomy: %w", platform, err)
	}

	categories := domain.Flatten(roots, true)
	log.Debugf("Fetched %d leaf categories for %s", len(categories), platform)
	return categories, nil
}

// FetchAll retrieves the requested taxonomies concurrently. Each
// platform settles on its own: a failure is recorded in its result and
// never blocks or aborts the siblings.
func (c *taxonomyClient) FetchAll(ctx context.Context, platforms []domain.Platform) map[domain.Platform]FetchResult {
	type settled struct {
		platform domain.Platform
		result   FetchResult
	}

	resultsChan := make(chan settled, len(platforms))
	wg := &sync.WaitGroup{}

	for _, platform := range platforms {
		wg.Add(1)

		go func(platform domain.Platform) {
			defer wg.Done()

			categories, err := c.FetchCategories(ctx, platform)
			if err != nil {
				log.Errorf("❌ Failed to fetch %s taxonomy: %v", platform, err)
				resultsChan <- settled{platform: platform, result: FetchResult{Err: err}}
				return
			}

			resultsChan <- settled{platform: platform, result: FetchResult{Categories: categories}}
		}(platform)
	}

	wg.Wait()
	close(resultsChan)

	results := make(map[domain.Platform]FetchResult, len(platforms))
	for s := range resultsChan {
		results[s.platform] = s.result
	}

	return results
}

func (c *taxonomyClient) fetchDocument(ctx context.Context, platform domain.Platform, url string) (string, error) {
	c.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	resp, err := c.httpClient.R().
		SetContext(reqCtx).
		Get(url)

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch %s taxonomy: %w", platform, err)
	}

	if resp.IsError() {
		return "", &FetchError{
			Platform:   platform,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
		}
	}

	// Two of the sources ship a wrong or absent charset header, so the
	// body is decoded as UTF-8 explicitly instead of trusting the
	// response metadata. XML prolog declarations are still honored by
	// the parser's charset reader.
	return strings.ToValidUTF8(resp.String(), "�"), nil
}
