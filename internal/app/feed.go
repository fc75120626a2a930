package app

import (
	"net/http"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance/source"
)

// NewFeedSource builds the finance source described by cfg: the embedded demo feed when
// FEED_STATIC is set, otherwise the HTTP feed. Zone aliases are applied to both.
func NewFeedSource(cfg *Config, observer source.FetchObserver) (finance.Source, error) {
	aliases, err := source.LoadZoneAliases(cfg.ZoneAliasesFile)
	if err != nil {
		return nil, err
	}
	if cfg.FeedStatic {
		return source.StaticSource{Aliases: aliases}, nil
	}
	return &source.HTTPSource{
		BaseURL:  cfg.FeedBaseURL,
		Client:   &http.Client{},
		Timeout:  cfg.FeedTimeout,
		Aliases:  aliases,
		Observer: observer,
	}, nil
}
