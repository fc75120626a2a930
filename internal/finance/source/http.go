package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

const (
	// SystemsPath serves the branch system-info list.
	SystemsPath = "/systems"
	// FinancePath serves the per-branch monthly series.
	FinancePath = "/finance"

	defaultTimeout  = 10 * time.Second
	maxPayloadBytes = 16 << 20
)

// FetchObserver records upstream request outcomes.
type FetchObserver interface {
	ObserveFetch(endpoint string, started time.Time, err error)
}

// HTTPSource loads the feed from the upstream dashboard service.
type HTTPSource struct {
	BaseURL  string
	Client   *http.Client
	Timeout  time.Duration
	Aliases  ZoneAliases
	Observer FetchObserver
}

// Fetch requests both endpoints concurrently and fails if either does.
func (s *HTTPSource) Fetch(ctx context.Context) (finance.Feed, error) {
	if s == nil || strings.TrimSpace(s.BaseURL) == "" {
		return finance.Feed{}, fmt.Errorf("source: base url not configured")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var feed finance.Feed
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		payload, err := s.get(ctx, SystemsPath)
		if err != nil {
			return err
		}
		branches, err := DecodeBranches(payload)
		if err != nil {
			return err
		}
		feed.Branches = s.Aliases.Apply(branches)
		return nil
	})

	g.Go(func() error {
		payload, err := s.get(ctx, FinancePath)
		if err != nil {
			return err
		}
		records, err := DecodeFinance(payload)
		if err != nil {
			return err
		}
		feed.Finance = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return finance.Feed{}, err
	}
	return feed, nil
}

func (s *HTTPSource) get(ctx context.Context, path string) (payload []byte, err error) {
	started := time.Now()
	if s.Observer != nil {
		defer func() { s.Observer.ObserveFetch(path, started, err) }()
	}
	url := strings.TrimRight(s.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("source: get %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	payload, err = io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	return payload, nil
}
