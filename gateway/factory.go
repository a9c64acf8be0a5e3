package gateway

import (
	"fmt"
	"log/slog"

	"catalogdash/config"
	"catalogdash/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway is a configured catalog gateway.
type Gateway struct {
	domain.CatalogGateway
	Kind string
	// Breaker is nil unless the circuit breaker is enabled.
	Breaker *Breaker
}

// New constructs a Gateway by kind: "http" or "file".
// Collectors are registered on reg; a nil reg skips registration.
func New(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := NewMetrics(reg)

	switch cfg.Gateway {
	case config.GatewayHTTP:
		var client Doer = NewClient(ClientConfig{
			Timeout:         cfg.Timeout,
			MaxConnsPerHost: DefaultClientConfig().MaxConnsPerHost,
		})
		var breaker *Breaker
		if cfg.Breaker {
			breaker = NewBreaker(client, DefaultBreakerConfig("catalog"), logger, metrics)
			client = breaker
		}
		return &Gateway{
			CatalogGateway: NewHTTPGateway(client, cfg.URL, cfg.CreateURL, logger, metrics),
			Kind:           config.GatewayHTTP,
			Breaker:        breaker,
		}, nil
	case config.GatewayFile:
		fg, err := NewFileGateway(cfg.File, logger, metrics)
		if err != nil {
			return nil, err
		}
		return &Gateway{CatalogGateway: fg, Kind: config.GatewayFile}, nil
	default:
		return nil, fmt.Errorf("unknown gateway kind: %s", cfg.Gateway)
	}
}
