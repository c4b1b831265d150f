package fitbit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient("cid", "secret", "http://app.test/api/v1/fitbit/callback",
		WithBaseURLs(srv.URL+"/oauth2/authorize", srv.URL+"/oauth2/token", srv.URL),
		WithHTTPClient(srv.Client()))
}

func TestAuthURL(t *testing.T) {
	c := NewClient("cid", "secret", "http://app.test/cb")
	u, err := url.Parse(c.AuthURL("state-1"))
	require.NoError(t, err)

	assert.Equal(t, "www.fitbit.com", u.Host)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://app.test/cb", q.Get("redirect_uri"))
	assert.Equal(t, Scopes, q.Get("scope"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "31536000", q.Get("expires_in"))
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient("", "", "").Configured())
	assert.True(t, NewClient("a", "b", "").Configured())
}

func TestExchangeUsesBasicAuthAndDefaultsExpiry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "cid" || pass != "secret" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		require.NoError(t, r.ParseForm())
		if r.FormValue("grant_type") != "authorization_code" || r.FormValue("code") != "the-code" {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at",
			"refresh_token": "rt",
			"token_type":    "Bearer",
		})
	})
	c := newTestClient(t, mux)

	tok, err := c.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), tok.Expiry, time.Minute)
}

func TestRefresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "old-rt", r.FormValue("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-at","refresh_token":"new-rt","expires_in":3600,"token_type":"Bearer"}`))
	})
	c := newTestClient(t, mux)

	tok, err := c.Refresh(context.Background(), "old-rt")
	require.NoError(t, err)
	assert.Equal(t, "new-at", tok.AccessToken)
	assert.Equal(t, "new-rt", tok.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Expiry, time.Minute)
}

func TestDailySummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1/user/-/activities/date/2024-03-10.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"summary":{"steps":9000,"fairlyActiveMinutes":20,"veryActiveMinutes":15}}`))
	})
	mux.HandleFunc("/1/user/-/activities/heart/date/2024-03-10/1d.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"activities-heart":[{"value":{"restingHeartRate":58}}]}`))
	})
	c := newTestClient(t, mux)

	sum, err := c.DailySummary(context.Background(), "tok", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, 9000, sum.Steps)
	assert.Equal(t, 35, sum.ActiveMinutes)
	require.NotNil(t, sum.RestingHR)
	assert.Equal(t, 58, *sum.RestingHR)
}

func TestSleepAndStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1.2/user/-/sleep/date/2024-03-10.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":{"totalMinutesAsleep":400,"efficiency":90}}`))
	})
	mux.HandleFunc("/1.2/user/-/sleep/date/2024-03-11.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	})
	c := newTestClient(t, mux)

	s, err := c.Sleep(context.Background(), "tok", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, &SleepSummary{MinutesAsleep: 400, Efficiency: 90}, s)

	_, err = c.Sleep(context.Background(), "tok", "2024-03-11")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
}

func TestIntradayHeartRateAndMinutesAbove(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1/user/-/activities/heart/date/2024-03-10/1d/1min.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"activities-heart-intraday":{"dataset":[
			{"time":"11:59:00","value":130},
			{"time":"12:00:00","value":85},
			{"time":"12:01:00","value":79},
			{"time":"12:02:00","value":120},
			{"time":"12:40:00","value":140}
		]}}`))
	})
	c := newTestClient(t, mux)

	points, err := c.IntradayHeartRate(context.Background(), "tok", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, points, 5)

	assert.Equal(t, 2, MinutesAbove(points, "12:00:00", "12:35:00", 80))
	assert.Equal(t, 3, MinutesAbove(points, "11:55:00", "12:35:00", 80))
}
