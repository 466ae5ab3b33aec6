package alerts

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushDisabledIsNoop(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := NewClient(server.URL, "rentdash", false, "")
	require.NoError(t, client.Push(context.Background(), "hello"))
	require.Equal(t, int64(0), requests.Load())
}

func TestPushSendsMessage(t *testing.T) {
	var body atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rentdash", r.URL.Path)
		require.Equal(t, "high", r.Header.Get("Priority"))
		data, _ := io.ReadAll(r.Body)
		body.Store(string(data))
	}))
	defer server.Close()

	client := NewClient(server.URL, "rentdash", true, "high")
	require.NoError(t, client.Push(context.Background(), "Rental expired: smurf-01"))
	require.Equal(t, "Rental expired: smurf-01", body.Load())

	sent, failed := client.Metrics()
	require.Equal(t, int64(1), sent)
	require.Equal(t, int64(0), failed)
}

func TestPushDoesNotRetryClientErrors(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "rentdash", true, "")
	err := client.Push(context.Background(), "hello")
	require.Error(t, err)
	require.Equal(t, int64(1), requests.Load())

	_, failed := client.Metrics()
	require.Equal(t, int64(1), failed)
}

func TestPushErrorRetryability(t *testing.T) {
	require.True(t, (&PushError{StatusCode: 0}).IsRetryable())
	require.True(t, (&PushError{StatusCode: 500}).IsRetryable())
	require.True(t, (&PushError{StatusCode: 429}).IsRetryable())
	require.False(t, (&PushError{StatusCode: 404}).IsRetryable())
	require.False(t, (&PushError{StatusCode: 401}).IsRetryable())
}
