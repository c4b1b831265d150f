// Package calcom is a small Cal.com client: open slots, the day's bookings,
// booking creation and webhook signature checks.
package calcom

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	apiV1URL   = "https://api.cal.com/v1"
	apiV2URL   = "https://api.cal.com/v2"
	apiVersion = "2024-08-13"

	// SignatureHeader carries the hex HMAC-SHA256 of the webhook body.
	SignatureHeader = "x-cal-signature-256"

	bookingSource = "getsfit"
)

type Client struct {
	apiKey        string
	username      string
	eventTypeSlug string
	webhookSecret string
	httpClient    *http.Client
	v1Base        string
	v2Base        string
}

type Option func(*Client)

func WithBaseURLs(v1, v2 string) Option {
	return func(c *Client) {
		c.v1Base = v1
		c.v2Base = v2
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(apiKey, username, eventTypeSlug, webhookSecret string, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		username:      username,
		eventTypeSlug: eventTypeSlug,
		webhookSecret: webhookSecret,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		v1Base:        apiV1URL,
		v2Base:        apiV2URL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) EventTypeSlug() string {
	return c.eventTypeSlug
}

// StatusError is returned when Cal.com answers with a non-2xx status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cal.com %s: status %d: %s", e.Op, e.Status, e.Body)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cal.com %s: %w", op, err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"op":          op,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("cal.com request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cal.com %s: decode: %w", op, err)
	}
	return nil
}

func (c *Client) v2Request(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("cal-api-version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type slotsResponse struct {
	Slots map[string][]struct {
		Time string `json:"time"`
	} `json:"slots"`
}

// AvailableSlots lists bookable start times between from and to, sorted.
// Times are sent as local wall-clock strings in loc, the way the v1 API wants them.
func (c *Client) AvailableSlots(ctx context.Context, from, to time.Time, loc *time.Location) ([]time.Time, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("startTime", from.In(loc).Format("2006-01-02T15:04:05"))
	q.Set("endTime", to.In(loc).Format("2006-01-02T15:04:05"))
	q.Set("timeZone", loc.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.v1Base+"/slots/available?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	var resp slotsResponse
	if err := c.do(req, "slots", &resp); err != nil {
		return nil, err
	}

	var out []time.Time
	for _, day := range resp.Slots {
		for _, s := range day {
			t, err := time.Parse(time.RFC3339, s.Time)
			if err != nil {
				continue
			}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// Booking is an accepted booking as returned by the v2 API.
type Booking struct {
	UID       string    `json:"uid"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	EventType struct {
		Slug string `json:"slug"`
	} `json:"eventType"`
}

type bookingsResponse struct {
	Data []Booking `json:"data"`
}

// WorkoutBookingsOn returns the start times of the day's accepted workout
// bookings, sorted. A booking counts when its event type slug matches or its
// title mentions "workout".
func (c *Client) WorkoutBookingsOn(ctx context.Context, day time.Time, loc *time.Location) ([]time.Time, error) {
	date := day.In(loc).Format("2006-01-02")
	q := url.Values{}
	q.Set("afterStart", date+"T00:00:00.000Z")
	q.Set("beforeEnd", date+"T23:59:59.999Z")
	q.Set("status", "accepted")

	req, err := c.v2Request(ctx, http.MethodGet, c.v2Base+"/bookings?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var resp bookingsResponse
	if err := c.do(req, "bookings", &resp); err != nil {
		return nil, err
	}

	var out []time.Time
	for _, b := range resp.Data {
		if b.EventType.Slug == c.eventTypeSlug || strings.Contains(strings.ToLower(b.Title), "workout") {
			out = append(out, b.Start)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// Attendee is who the booking is made for.
type Attendee struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone"`
}

type createBookingRequest struct {
	Start         string            `json:"start"`
	Attendee      Attendee          `json:"attendee"`
	Metadata      map[string]string `json:"metadata"`
	EventTypeSlug string            `json:"eventTypeSlug"`
	Username      string            `json:"username"`
}

// CreateBooking books the configured event type at start.
func (c *Client) CreateBooking(ctx context.Context, start time.Time, attendee Attendee) error {
	if c.username == "" || c.eventTypeSlug == "" {
		return fmt.Errorf("cal.com booking: username and event type slug are required")
	}
	body, err := json.Marshal(createBookingRequest{
		Start:         start.UTC().Format("2006-01-02T15:04:05Z"),
		Attendee:      attendee,
		Metadata:      map[string]string{"source": bookingSource},
		EventTypeSlug: c.eventTypeSlug,
		Username:      c.username,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := c.v2Request(ctx, http.MethodPost, c.v2Base+"/bookings", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.do(req, "create booking", nil)
}

// VerifySignature checks the webhook body against its hex HMAC-SHA256
// signature. Without a configured secret nothing verifies.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if c.webhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// WebhookEvent is the part of a Cal.com webhook delivery the app reads.
type WebhookEvent struct {
	TriggerEvent string `json:"triggerEvent"`
	Payload      struct {
		Type      string `json:"type"`
		Attendees []struct {
			Email string `json:"email"`
		} `json:"attendees"`
	} `json:"payload"`
}

const TriggerBookingCancelled = "BOOKING_CANCELLED"

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("cal.com webhook: %w", err)
	}
	return &ev, nil
}
