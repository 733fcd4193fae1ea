package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesStream(t *testing.T) {
	broker := NewBroker()
	srv := httptest.NewServer(broker)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	require.Eventually(t, func() bool { return broker.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, broker.Publish("comment.created", map[string]int{"id": 7}))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		lines = append(lines, line)
	}
	assert.Equal(t, []string{"event: comment.created", `data: {"id":7}`}, lines)
}

func TestDisconnectUnsubscribes(t *testing.T) {
	broker := NewBroker()
	srv := httptest.NewServer(broker)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return broker.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	resp.Body.Close()
	assert.Eventually(t, func() bool { return broker.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutClients(t *testing.T) {
	assert.NoError(t, NewBroker().Publish("noop", nil))
	assert.Error(t, NewBroker().Publish("bad", func() {}))
}
