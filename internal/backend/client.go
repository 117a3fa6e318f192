package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/observability/metrics"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Client wraps the clinic backend REST API. Calls forward the patient's
// session token so the backend applies its own authorization.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	metrics    *metrics.PortalMetrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMetrics records per-endpoint latency.
func WithMetrics(m *metrics.PortalMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient constructs a backend client rooted at baseURL.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMyBookings returns every booking owned by the session behind token.
func (c *Client) GetMyBookings(ctx context.Context, token string) ([]Booking, error) {
	var bookings listPayload[Booking]
	if err := c.doJSON(ctx, "my_bookings", http.MethodGet, "/api/Booking/my-bookings", token, nil, &bookings); err != nil {
		return nil, fmt.Errorf("get my bookings: %w", err)
	}
	return bookings.items, nil
}

// CancelBooking asks the backend to cancel a booking. Refund rules are applied
// by the backend and are not visible here.
func (c *Client) CancelBooking(ctx context.Context, token, bookingID string) error {
	path := "/api/Booking/cancel/" + url.PathEscape(bookingID)
	if err := c.doJSON(ctx, "cancel_booking", http.MethodPut, path, token, nil, nil); err != nil {
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}
	return nil
}

// GetPatientIDFromUserID resolves the patient record behind a user account.
func (c *Client) GetPatientIDFromUserID(ctx context.Context, token, userID string) (string, error) {
	path := "/api/Patient/by-user/" + url.PathEscape(userID)
	var out struct {
		PatientID string `json:"patientId"`
		Data      *struct {
			PatientID string `json:"patientId"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, "patient_by_user", http.MethodGet, path, token, nil, &out); err != nil {
		return "", fmt.Errorf("get patient id: %w", err)
	}
	patientID := out.PatientID
	if patientID == "" && out.Data != nil {
		patientID = out.Data.PatientID
	}
	if patientID == "" {
		return "", apperr.NotFound("Không tìm thấy hồ sơ bệnh nhân")
	}
	return patientID, nil
}

// GetTreatmentPlansByPatient lists all treatment plans of a patient.
func (c *Client) GetTreatmentPlansByPatient(ctx context.Context, token, patientID string) ([]TreatmentPlan, error) {
	path := "/api/TreatmentPlan/patient/" + url.PathEscape(patientID)
	var plans listPayload[TreatmentPlan]
	if err := c.doJSON(ctx, "treatment_plans", http.MethodGet, path, token, nil, &plans); err != nil {
		return nil, fmt.Errorf("get treatment plans: %w", err)
	}
	return plans.items, nil
}

func (c *Client) doJSON(ctx context.Context, endpoint, method, path, token string, body any, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, token, body, out)
	c.metrics.ObserveBackendRequest(endpoint, status, time.Since(start).Seconds())
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, body any, out any) (string, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return "error", fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return "error", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "transport_error", apperr.NetworkFailure("Không thể kết nối tới máy chủ phòng khám", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "transport_error", apperr.NetworkFailure("Không thể kết nối tới máy chủ phòng khám", fmt.Errorf("read response: %w", err))
	}

	statusLabel := fmt.Sprintf("%d", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("backend API non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		cause := fmt.Errorf("backend API returned %d: %s", resp.StatusCode, msg)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return statusLabel, apperr.New(apperr.KindNotFound, "Không tìm thấy dữ liệu", cause)
		case http.StatusUnauthorized:
			return statusLabel, apperr.New(apperr.KindUnauthenticated, apperr.MsgSignInRequired, cause)
		default:
			return statusLabel, apperr.NetworkFailure(backendMessage(respBody), cause)
		}
	}

	if len(respBody) == 0 || out == nil {
		return statusLabel, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return statusLabel, apperr.NetworkFailure("Dữ liệu từ máy chủ không hợp lệ", fmt.Errorf("decode response: %w", err))
	}
	return statusLabel, nil
}

// backendMessage extracts the backend's own explanation from an error body,
// falling back to a generic message.
func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Title != "" {
			return payload.Title
		}
	}
	return "Máy chủ phòng khám không phản hồi. Vui lòng thử lại sau."
}

// listPayload accepts either a bare JSON array or an envelope {"data": [...]}.
type listPayload[T any] struct {
	items []T
}

func (l *listPayload[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		l.items = nil
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.items)
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		l.items = nil
		return nil
	}
	if err := json.Unmarshal(env.Data, &l.items); err != nil {
		return errors.New("backend: data envelope is not a list")
	}
	return nil
}
