// Package client - Go клиент для GET /land-registry/titles
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const titlesPath = "/land-registry/titles"

// Config - параметры клиента
type Config struct {
	BaseURL string
	// Token - HS256 токен сессии, пустой для RUNTIME=local
	Token   string
	Timeout time.Duration
}

// Title - участок из ответа API, Perimeter в порядке [lng, lat]
type Title struct {
	ID          string       `json:"id"`
	TitleNumber string       `json:"title_number"`
	Perimeter   [][2]float64 `json:"perimeter"`
}

// APIError - ответ с кодом, отличным от 200
type APIError struct {
	StatusCode int
	// Response - значение заголовка api-response
	Response string
	// Authoriser - значение заголовка api-authoriser для 401
	Authoriser string
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("land registry API error: status %d, %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("land registry API error: status %d, %s", e.StatusCode, e.Response)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

// New создает клиент. Timeout по умолчанию 10 секунд.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		logger:     logger,
	}
}

// FindTitles возвращает участки вокруг точки. radius == nil - радиус сервера по умолчанию.
func (c *Client) FindTitles(ctx context.Context, latitude, longitude float64, radius *float64) ([]Title, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	if radius != nil {
		query.Set("radius", strconv.FormatFloat(*radius, 'f', -1, 64))
	}

	reqURL := c.baseURL + titlesPath + "?" + query.Encode()

	c.logger.Debug("Calling land registry API", zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var titles []Title
	if err := json.NewDecoder(resp.Body).Decode(&titles); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if titles == nil {
		titles = []Title{}
	}

	c.logger.Debug("Land registry API call successful", zap.Int("count", len(titles)))
	return titles, nil
}

func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Response:   resp.Header.Get("api-response"),
		Authoriser: resp.Header.Get("api-authoriser"),
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(body) > 0 {
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.Details = envelope.Error.Details
		}
	}

	c.logger.Error("Land registry API returned error",
		zap.Int("status_code", resp.StatusCode),
		zap.String("api_response", apiErr.Response),
		zap.String("body", string(body)))
	return apiErr
}
