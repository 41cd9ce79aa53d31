package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPushClient struct {
	mu       sync.Mutex
	attempts int
	failures int
	sent     []string
}

func (s *stubPushClient) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if s.attempts <= s.failures {
		return errors.New("provider unavailable")
	}
	s.sent = append(s.sent, deviceToken)
	return nil
}

func TestDispatcher_DeliversInBackground(t *testing.T) {
	stub := &stubPushClient{}
	dispatcher := NewDispatcher(stub, time.Second, 3, zap.NewNop())

	dispatcher.Dispatch("device-123", "Order placed", "Your order is in.", map[string]string{"order_id": "abc"})
	dispatcher.Wait()

	assert.Equal(t, []string{"device-123"}, stub.sent)
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	stub := &stubPushClient{failures: 2}
	dispatcher := NewDispatcher(stub, time.Second, 3, zap.NewNop())

	dispatcher.Dispatch("device-123", "Order placed", "Your order is in.", nil)
	dispatcher.Wait()

	assert.Equal(t, 3, stub.attempts)
	assert.Equal(t, []string{"device-123"}, stub.sent)
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	stub := &stubPushClient{failures: 100}
	dispatcher := NewDispatcher(stub, time.Second, 2, zap.NewNop())

	// Exhausting retries must not panic or block forever
	dispatcher.Dispatch("device-123", "Order placed", "Your order is in.", nil)
	dispatcher.Wait()

	assert.Equal(t, 3, stub.attempts)
	assert.Empty(t, stub.sent)
}

func TestDispatcher_SkipsEmptyDeviceToken(t *testing.T) {
	stub := &stubPushClient{}
	dispatcher := NewDispatcher(stub, time.Second, 3, zap.NewNop())

	dispatcher.Dispatch("", "Order placed", "Your order is in.", nil)
	dispatcher.Wait()

	assert.Zero(t, stub.attempts)
}

func TestHTTPPushClient_SendsProviderPayload(t *testing.T) {
	var received pushMessage
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPPushClient(server.URL, "secret-key", time.Second)

	err := client.Send(context.Background(), "device-123", "Order placed", "Your order is in.",
		map[string]string{"order_id": "abc"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "device-123", received.To)
	assert.Equal(t, "Order placed", received.Title)
	assert.Equal(t, "Your order is in.", received.Body)
	assert.Equal(t, "abc", received.Data["order_id"])
}

func TestHTTPPushClient_NonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPPushClient(server.URL, "", time.Second)

	err := client.Send(context.Background(), "device-123", "t", "b", nil)
	assert.Error(t, err)
}

func TestDispatcher_ProviderOutageNeverPropagates(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPPushClient(server.URL, "", time.Second)
	dispatcher := NewDispatcher(client, time.Second, 2, zap.NewNop())

	// A dead provider only costs retries; Dispatch and Wait stay clean
	dispatcher.Dispatch("device-123", "Order placed", "Your order is in.", nil)
	dispatcher.Wait()

	assert.Equal(t, int32(3), calls.Load())
}
