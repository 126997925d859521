// Package healthapi is the REST client for the remote health-product and
// medicine-log API.
package healthapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"medreminder/internal/domain/entity"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"
)

const defaultTimeout = 15 * time.Second

// Client talks to the health API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

// NewClient creates a client for baseURL. token, when set, is sent as a
// bearer token. A zero timeout uses the default.
func NewClient(baseURL, token string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	return appErrors.ErrRemoteAPI
}

// IsTransient reports whether err is worth retrying: network failures,
// timeouts, 429 and 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status == http.StatusTooManyRequests || statusErr.Status >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// CreateHealthProduct creates a medicine.
func (c *Client) CreateHealthProduct(ctx context.Context, req entity.HealthProductRequest) (*entity.HealthProduct, error) {
	var out entity.HealthProduct
	if _, err := c.do(ctx, http.MethodPost, "/health-product/createHealthProduct", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateHealthProduct replaces a medicine.
func (c *Client) UpdateHealthProduct(ctx context.Context, id entity.ID, req entity.HealthProductRequest) (*entity.HealthProduct, error) {
	var out entity.HealthProduct
	if _, err := c.do(ctx, http.MethodPut, "/health-product/"+id.String(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHealthProduct fetches a medicine. A 404 is reported as ErrHealthProductNotFound.
func (c *Client) GetHealthProduct(ctx context.Context, id entity.ID) (*entity.HealthProduct, error) {
	var out entity.HealthProduct
	if _, err := c.do(ctx, http.MethodGet, "/health-product/"+id.String(), nil, &out); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %v", appErrors.ErrHealthProductNotFound, err)
		}
		return nil, err
	}
	return &out, nil
}

// DeleteHealthProduct deletes a medicine.
func (c *Client) DeleteHealthProduct(ctx context.Context, id entity.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/health-product/"+id.String(), nil, nil)
	return err
}

// RecordMedicineUsage decrements the available quantity by one dose.
// Failures reported by the API are classified into ErrInsufficientQuantity,
// ErrHealthProductNotFound and ErrHealthProductExpired where possible.
func (c *Client) RecordMedicineUsage(ctx context.Context, id entity.ID) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid health product id", appErrors.ErrHealthProductNotFound)
	}
	_, err := c.do(ctx, http.MethodPost, "/health-product/"+id.String()+"/record-usage", nil, nil)
	if err != nil {
		return classifyUsageError(err)
	}
	c.log.Debug(fmt.Sprintf("Recorded medicine usage for health product %d", id))
	return nil
}

// AddMedicineUsageLog creates a usage log entry. It reports true only when
// the API answers 201 Created.
func (c *Client) AddMedicineUsageLog(ctx context.Context, entry entity.UsageLogEntry) (bool, error) {
	if entry.UserID <= 0 || entry.HealthProductID <= 0 {
		return false, fmt.Errorf("%w: missing userId or healthProductId", appErrors.ErrMalformedPayload)
	}
	status, err := c.do(ctx, http.MethodPost, "/medicine-logs/log", entry, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusCreated, nil
}

func classifyUsageError(err error) error {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	msg := strings.ToLower(statusErr.Message)
	switch {
	case strings.Contains(msg, "insufficient quantity"):
		return fmt.Errorf("%w: %v", appErrors.ErrInsufficientQuantity, err)
	case strings.Contains(msg, "not found"), statusErr.Status == http.StatusNotFound:
		return fmt.Errorf("%w: %v", appErrors.ErrHealthProductNotFound, err)
	case strings.Contains(msg, "expired"):
		return fmt.Errorf("%w: %v", appErrors.ErrHealthProductExpired, err)
	}
	return err
}

type errorBody struct {
	Errors struct {
		Error string `json:"error"`
	} `json:"errors"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req, in != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return resp.StatusCode, &StatusError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

func errorMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Errors.Error != "" {
			return eb.Errors.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
