// Package remote fetches the published menu document over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultMaxBytes = 1 << 20 // 1MB
)

var errMissingMenu = errors.New("response has no menu field")

// MenuClient implements menu.RemoteMenuSource against a JSON document of the
// form {"menu":[{"id":1,"title":"...","price":1.0}]}.
type MenuClient struct {
	url        string
	maxBytes   int64
	httpClient *http.Client
	logger     *zap.Logger
}

// NewMenuClient creates a client from the remote configuration
func NewMenuClient(cfg config.RemoteConfig, logger *zap.Logger) *MenuClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuClient{
		url:        cfg.URL,
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("remote_menu"),
	}
}

// FetchMenu downloads, decodes and validates the menu. Failures, including a
// single invalid record, are logged and yield an empty slice.
func (c *MenuClient) FetchMenu(ctx context.Context) []menu.RemoteMenuItem {
	start := time.Now()
	items, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch remote menu",
			zap.String("url", c.url),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return []menu.RemoteMenuItem{}
	}

	c.logger.Info("fetched remote menu",
		zap.String("url", c.url),
		zap.Int("items", len(items)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return items
}

func (c *MenuClient) fetch(ctx context.Context) ([]menu.RemoteMenuItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", c.maxBytes)
	}

	var doc struct {
		Menu *[]menu.RemoteMenuItem `json:"menu"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if doc.Menu == nil {
		return nil, errMissingMenu
	}
	if err := menu.ValidateRemoteMenu(*doc.Menu); err != nil {
		return nil, fmt.Errorf("invalid menu document: %w", err)
	}
	return *doc.Menu, nil
}

var _ menu.RemoteMenuSource = (*MenuClient)(nil)
