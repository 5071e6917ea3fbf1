package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"Mansoor88-6/timeclock/internal/models"
)

// APIClient talks to the timekeeping backend: it sends and fetches the user's
// clock events and forwards timecard submissions to the approval system.
type APIClient struct {
	baseURL    string
	apiKey     string
	deviceID   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiKey, deviceID string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		deviceID: deviceID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type submitRequest struct {
	Date     string `json:"date"`
	DeviceID string `json:"deviceId"`
}

type eventsResponse struct {
	Events []models.ClockEvent `json:"events"`
}

// ListEvents fetches every clock event of the current user.
func (c *APIClient) ListEvents(ctx context.Context) ([]models.ClockEvent, error) {
	url := fmt.Sprintf("%s/api/v1/clock-events", c.baseURL)
	body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse events response: %w", err)
	}
	return resp.Events, nil
}

// CreateEvent sends a clock event recorded on this device. A 409 response
// means the backend already holds an event with the same ID and is returned
// as *ConflictError.
func (c *APIClient) CreateEvent(ctx context.Context, e models.ClockEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal clock event: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/clock-events", c.baseURL)
	if _, err := c.do(ctx, http.MethodPost, url, payload); err != nil {
		return err
	}
	return nil
}

// SubmitForApproval asks the approval system to review date. A 409 response
// is returned as *ConflictError.
func (c *APIClient) SubmitForApproval(ctx context.Context, date civil.Date) error {
	payload, err := json.Marshal(submitRequest{Date: date.String(), DeviceID: c.deviceID})
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/timecards/%s/submit", c.baseURL, date)
	if _, err := c.do(ctx, http.MethodPost, url, payload); err != nil {
		return err
	}
	return nil
}

// HealthCheck checks if the backend is reachable
func (c *APIClient) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Backend request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("Backend request succeeded",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return body, nil
	}

	errMsg := fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Error("Authentication failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)),
		)
		return nil, &AuthError{Message: errMsg, StatusCode: resp.StatusCode}
	case http.StatusConflict:
		c.logger.Info("Backend reported conflict",
			zap.String("url", url),
		)
		return nil, &ConflictError{Message: errMsg, StatusCode: resp.StatusCode}
	case http.StatusTooManyRequests:
		c.logger.Warn("Rate limited",
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, &RateLimitError{Message: errMsg, StatusCode: resp.StatusCode}
	case http.StatusBadRequest:
		c.logger.Error("Invalid request",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)),
		)
		return nil, &BadRequestError{Message: errMsg, StatusCode: resp.StatusCode}
	default:
		c.logger.Error("Backend error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)),
		)
		return nil, &BackendError{Message: errMsg, StatusCode: resp.StatusCode}
	}
}
