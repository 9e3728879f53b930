package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/models"
)

// HTTPClientConfig carries settings for the REST implementation of
// [ConversationService].
type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpConversationService struct {
	client *resty.Client
	log    *logger.Logger
}

// NewHTTPConversationService builds the REST client for the
// conversation-history service. An empty base URL falls back to
// localhost:8080 and a non-positive timeout to 15s, so a hung request can
// never block a caller forever.
func NewHTTPConversationService(cfg HTTPClientConfig, log *logger.Logger) ConversationService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpConversationService{client: cli, log: log}
}

func (h *httpConversationService) GetProviders(ctx context.Context, projectID string) (map[models.ProviderID]models.ProviderStatus, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/conversation/%s/providers", projectID))
	if err != nil {
		return nil, fmt.Errorf("get providers request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var statuses map[models.ProviderID]models.ProviderStatus
	if err = json.Unmarshal(resp.Body(), &statuses); err != nil {
		return nil, fmt.Errorf("%w: decode providers response: %v", ErrMalformedResponse, err)
	}
	if statuses == nil {
		return nil, fmt.Errorf("%w: empty providers response", ErrMalformedResponse)
	}

	return statuses, nil
}

func (h *httpConversationService) GetSummary(ctx context.Context, projectID string, provider models.ProviderID) (models.ConversationSummary, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("provider", string(provider)).
		Get(fmt.Sprintf("/api/conversation/%s/summary", projectID))
	if err != nil {
		return models.ConversationSummary{}, fmt.Errorf("get summary request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ConversationSummary{}, err
	}

	var summary models.ConversationSummary
	if err = json.Unmarshal(resp.Body(), &summary); err != nil {
		return models.ConversationSummary{}, fmt.Errorf("%w: decode summary response: %v", ErrMalformedResponse, err)
	}

	return summary, nil
}

func (h *httpConversationService) GetStats(ctx context.Context, projectID string) (models.StatsResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/conversation/%s/stats", projectID))
	if err != nil {
		return models.StatsResponse{}, fmt.Errorf("get stats request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.StatsResponse{}, err
	}

	var stats models.StatsResponse
	if err = json.Unmarshal(resp.Body(), &stats); err != nil {
		return models.StatsResponse{}, fmt.Errorf("%w: decode stats response: %v", ErrMalformedResponse, err)
	}

	return stats, nil
}

func (h *httpConversationService) ClearHistory(ctx context.Context, projectID string, provider models.ProviderID) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("provider", string(provider)).
		Delete(fmt.Sprintf("/api/conversation/%s/history", projectID))
	if err != nil {
		return fmt.Errorf("clear history request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpConversationService) ResetAll(ctx context.Context, projectID string) (models.ResetAllResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/api/conversation/%s/reset-all", projectID))
	if err != nil {
		return models.ResetAllResponse{}, fmt.Errorf("reset all request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ResetAllResponse{}, err
	}

	var result models.ResetAllResponse
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		// The reset succeeded (2xx); the body is informational only.
		h.log.Warn().Err(err).Msg("decode reset-all response body")
		return models.ResetAllResponse{Success: true}, nil
	}

	return result, nil
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	if resp.StatusCode() == http.StatusNotFound {
		return ErrProjectNotFound
	}
	if resp.StatusCode() == http.StatusBadRequest && strings.Contains(strings.ToLower(body), "provider") {
		return ErrUnsupportedProvider
	}
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}
