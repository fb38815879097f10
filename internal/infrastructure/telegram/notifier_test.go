package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunReport(t *testing.T) {
	t.Parallel()

	var (
		path string
		form map[string]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"chat_id": r.PostForm.Get("chat_id"),
			"text":    r.PostForm.Get("text"),
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("123:abc", "-10042").WithAPIBase(server.URL+"/", server.Client())
	require.NoError(t, n.PublishRunReport(context.Background(), "DQ run r1\n- gfg: ok"))

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "-10042", form["chat_id"])
	assert.Equal(t, "DQ run r1\n- gfg: ok", form["text"])
}

func TestPublishRunReportErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewNotifier("t", "c").WithAPIBase(server.URL, server.Client()).
		PublishRunReport(context.Background(), "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	assert.Error(t, NewNotifier("", "c").PublishRunReport(context.Background(), "report"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("ж", maxMessageRunes+10)
	out := truncate(long, maxMessageRunes)
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))
}
