package calcom

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient("key", "coach", "workout", "whsec", WithBaseURLs(srv.URL+"/v1", srv.URL+"/v2"), WithHTTPClient(srv.Client()))
}

func sydney(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	return loc
}

func TestAvailableSlots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/slots/available", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key", q.Get("apiKey"))
		assert.Equal(t, "2024-03-11T11:00:00", q.Get("startTime"))
		assert.Equal(t, "2024-03-11T16:00:00", q.Get("endTime"))
		assert.Equal(t, "Australia/Sydney", q.Get("timeZone"))
		_, _ = w.Write([]byte(`{"slots":{"2024-03-11":[{"time":"2024-03-11T14:00:00+11:00"},{"time":"2024-03-11T12:00:00+11:00"},{"time":"garbage"}]}}`))
	})
	c := newTestClient(t, mux)
	loc := sydney(t)

	from := time.Date(2024, 3, 11, 11, 0, 0, 0, loc)
	slots, err := c.AvailableSlots(context.Background(), from, from.Add(5*time.Hour), loc)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 12, slots[0].In(loc).Hour())
	assert.Equal(t, 14, slots[1].In(loc).Hour())
}

func TestWorkoutBookingsOnFiltersBySlugOrTitle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/bookings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, apiVersion, r.Header.Get("cal-api-version"))
		assert.Equal(t, "accepted", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"data":[
			{"uid":"1","title":"Dentist","start":"2024-03-11T03:00:00Z","eventType":{"slug":"other"}},
			{"uid":"2","title":"Gym","start":"2024-03-11T02:00:00Z","eventType":{"slug":"workout"}},
			{"uid":"3","title":"Morning Workout","start":"2024-03-11T01:00:00Z","eventType":{"slug":"x"}}
		]}`))
	})
	c := newTestClient(t, mux)

	got, err := c.WorkoutBookingsOn(context.Background(), time.Date(2024, 3, 11, 9, 0, 0, 0, sydney(t)), sydney(t))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC), got[0].UTC())
	assert.Equal(t, time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC), got[1].UTC())
}

func TestCreateBooking(t *testing.T) {
	var got createBookingRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/bookings", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	c := newTestClient(t, mux)

	start := time.Date(2024, 3, 12, 1, 0, 0, 0, time.UTC)
	err := c.CreateBooking(context.Background(), start, Attendee{Name: "me", Email: "me@x.io", TimeZone: "Australia/Sydney"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-12T01:00:00Z", got.Start)
	assert.Equal(t, "workout", got.EventTypeSlug)
	assert.Equal(t, "coach", got.Username)
	assert.Equal(t, "me@x.io", got.Attendee.Email)
	assert.Equal(t, bookingSource, got.Metadata["source"])
}

func TestCreateBookingStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/bookings", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slot taken", http.StatusConflict)
	})
	c := newTestClient(t, mux)

	err := c.CreateBooking(context.Background(), time.Now(), Attendee{Email: "a@b.c"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Status)
}

func TestVerifySignature(t *testing.T) {
	c := NewClient("key", "u", "workout", "whsec")
	body := []byte(`{"triggerEvent":"BOOKING_CANCELLED"}`)
	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, c.VerifySignature(body, sig))
	assert.False(t, c.VerifySignature(body, "deadbeef"))
	assert.False(t, c.VerifySignature([]byte(`{}`), sig))
	assert.False(t, NewClient("key", "u", "workout", "").VerifySignature(body, sig))
}

func TestParseWebhookEvent(t *testing.T) {
	ev, err := ParseWebhookEvent([]byte(`{"triggerEvent":"BOOKING_CANCELLED","payload":{"type":"workout","attendees":[{"email":"me@x.io"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, TriggerBookingCancelled, ev.TriggerEvent)
	assert.Equal(t, "workout", ev.Payload.Type)
	require.Len(t, ev.Payload.Attendees, 1)
	assert.Equal(t, "me@x.io", ev.Payload.Attendees[0].Email)

	_, err = ParseWebhookEvent([]byte(`not json`))
	assert.Error(t, err)
}
