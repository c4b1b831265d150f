package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls map[string][]map[string]string
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		f.mu.Lock()
		f.calls[method] = append(f.calls[method], form)
		f.mu.Unlock()

		switch method {
		case "getMe":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"fit","username":"fitbot"}}`))
		case "sendMessage":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		case "setWebhook":
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		default:
			_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"unknown"}`))
		}
	}
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	api := &fakeAPI{calls: map[string][]map[string]string{}}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	c, err := NewClientWithEndpoint("TOKEN", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return c, api
}

func TestSendMessageUsesHTML(t *testing.T) {
	c, api := newTestClient(t)

	require.NoError(t, c.SendMessage(context.Background(), 42, "<b>hi</b>"))

	require.Len(t, api.calls["sendMessage"], 1)
	sent := api.calls["sendMessage"][0]
	assert.Equal(t, "42", sent["chat_id"])
	assert.Equal(t, "<b>hi</b>", sent["text"])
	assert.Equal(t, "HTML", sent["parse_mode"])
}

func TestSetWebhook(t *testing.T) {
	c, api := newTestClient(t)

	require.NoError(t, c.SetWebhook("https://app.test/api/v1/telegram/webhook"))
	require.Len(t, api.calls["setWebhook"], 1)
	assert.Equal(t, "https://app.test/api/v1/telegram/webhook", api.calls["setWebhook"][0]["url"])
}

func TestParseUpdate(t *testing.T) {
	msg, ok, err := ParseUpdate(strings.NewReader(`{"update_id":1,"message":{"message_id":1,"date":0,"chat":{"id":99,"type":"private"},"text":"/status"}}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, IncomingMessage{ChatID: 99, Text: "/status"}, msg)

	msg, ok, err = ParseUpdate(strings.NewReader(`{"update_id":2,"edited_message":{"message_id":1,"date":0,"chat":{"id":5,"type":"private"},"text":"/done"}}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), msg.ChatID)

	_, ok, err = ParseUpdate(strings.NewReader(`{"update_id":3}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseUpdate(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("a", 79) + "–✓ done"
	got := preview(text, 80)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 79)+"–", got)

	assert.Equal(t, "short ✓", preview("short ✓", 80))
	assert.NoError(t, LogClient{}.SendMessage(context.Background(), 1, text))
}
