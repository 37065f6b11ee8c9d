package snapscan

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a fake merchant API and a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL:    server.URL,
		Snapcode:   "ABC",
		APIKey:     "test-key",
		MaxRetries: 3,
		RetryDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	return client, &calls
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestGetSendsAuthAndPagination(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/merchant/api/v1/payments", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "test-key", user)
		assert.Empty(t, pass)

		query := r.URL.Query()
		assert.Len(t, query, 2)
		assert.Equal(t, "2", query.Get("page"))
		assert.Equal(t, "0", query.Get("offset"))

		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		_, _ = io.WriteString(w, `[{"id": 1}]`)
	})

	var out any
	err := client.Get(context.Background(), "payments", &Pagination{Page: Int(2), Offset: Int(0)}, &out)
	require.NoError(t, err)
	require.Equal(t, []any{map[string]any{"id": float64(1)}}, out)
}

func TestGetWithoutPaginationHasNoQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = io.WriteString(w, `{}`)
	})

	var out any
	require.NoError(t, client.Get(context.Background(), "payments/1", nil, &out))
}

func TestGetReturnsBodyUnchanged(t *testing.T) {
	client, _ := newTestClient(t, respond(http.StatusOK, `{"id": 7, "status": "completed", "extra": {"tags": ["a", "b"]}, "isVoucher": false}`))

	var out any
	require.NoError(t, client.Get(context.Background(), "payments/7", nil, &out))

	expected := map[string]any{
		"id":        float64(7),
		"status":    "completed",
		"extra":     map[string]any{"tags": []any{"a", "b"}},
		"isVoucher": false,
	}
	require.Equal(t, expected, out)
}

func TestGetInvalidBodyIsDecodeError(t *testing.T) {
	for _, body := range []string{"<html>oops</html>", ""} {
		client, _ := newTestClient(t, respond(http.StatusOK, body))

		var out any
		err := client.Get(context.Background(), "payments", nil, &out)
		require.Error(t, err)
		require.Equal(t, ErrorCodeDecode, GetErrorCode(err))
		require.False(t, IsClientError(err))
		require.False(t, IsServerError(err))
	}
}

func TestGetClientErrorWithMessage(t *testing.T) {
	client, _ := newTestClient(t, respond(http.StatusNotFound, `{"message": "not found"}`))

	var out any
	err := client.Get(context.Background(), "payments/99", nil, &out)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeClient, apiErr.Code)
	require.Equal(t, "not found", apiErr.Message)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestGetErrorGenericMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    ErrorCode
		message string
	}{
		{"503 without body", http.StatusServiceUnavailable, "", ErrorCodeServer, MessageServerError},
		{"500 html body", http.StatusInternalServerError, "<h1>down</h1>", ErrorCodeServer, MessageServerError},
		{"502 with message", http.StatusBadGateway, `{"message": "upstream"}`, ErrorCodeServer, "upstream"},
		{"400 without message key", http.StatusBadRequest, `{"error": "x"}`, ErrorCodeClient, MessageClientError},
		{"422 non-string message", http.StatusUnprocessableEntity, `{"message": 12}`, ErrorCodeClient, MessageClientError},
		{"401 array body", http.StatusUnauthorized, `["nope"]`, ErrorCodeClient, MessageClientError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, respond(tt.status, tt.body))

			var out any
			err := client.Get(context.Background(), "payments", nil, &out)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.code, apiErr.Code)
			require.Equal(t, tt.message, apiErr.Message)
			require.EqualValues(t, 1, calls.Load())
		})
	}
}

func TestGetUnexpectedStatus(t *testing.T) {
	client, _ := newTestClient(t, respond(http.StatusNotModified, ""))

	var out any
	err := client.Get(context.Background(), "payments", nil, &out)
	require.Equal(t, ErrorCodeUnexpectedStatus, GetErrorCode(err))
}

func TestPostSendsJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"a": 1, "b": "two"}`, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"ok": true}`)
	})

	var out map[string]any
	err := client.Post(context.Background(), "cash_ups", map[string]any{"a": 1, "b": "two"}, &out)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"ok": true}, out)
}

func TestMissingAPIKeyMakesNoRequest(t *testing.T) {
	client, calls := newTestClient(t, respond(http.StatusOK, `{}`))
	client.SetAPIKey("")

	var out any
	err := client.Get(context.Background(), "payments", nil, &out)
	require.True(t, IsConfigurationError(err))

	err = client.Post(context.Background(), "cash_ups", map[string]string{}, &out)
	require.True(t, IsConfigurationError(err))

	_, err = client.GetPayments(nil)
	require.True(t, IsConfigurationError(err))

	_, err = client.GetPayment(1)
	require.True(t, IsConfigurationError(err))

	_, err = client.GetCashUps(nil)
	require.True(t, IsConfigurationError(err))

	_, err = client.GetCashUpPayments("REF1", nil)
	require.True(t, IsConfigurationError(err))

	_, err = client.CreateCashUpPeriod(time.Now(), "REF1")
	require.True(t, IsConfigurationError(err))

	require.Zero(t, calls.Load())
}

func TestPostUnencodablePayload(t *testing.T) {
	client, calls := newTestClient(t, respond(http.StatusOK, `{}`))
	payload := map[string]any{"c": make(chan int)}

	var out any
	client.SetAPIKey("")
	err := client.Post(context.Background(), "cash_ups", payload, &out)
	require.True(t, IsConfigurationError(err), "missing key is reported before encoding: %v", err)

	client.SetAPIKey("test-key")
	err = client.Post(context.Background(), "cash_ups", payload, &out)
	require.Equal(t, ErrorCodeEncode, GetErrorCode(err))
	require.False(t, IsRetryableError(err))
	require.Zero(t, calls.Load())
}

func TestOversizedErrorBodyIsTruncated(t *testing.T) {
	body := `{"message": "x", "padding": "` + strings.Repeat("a", maxErrorBodyBytes) + `"}`
	client, _ := newTestClient(t, respond(http.StatusInternalServerError, body))

	var out any
	err := client.Get(context.Background(), "payments", nil, &out)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeServer, apiErr.Code)
	require.Equal(t, MessageServerError, apiErr.Message)
}

func TestTransportErrorIsClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := New(Config{BaseURL: baseURL, APIKey: "k"})
	require.NoError(t, err)

	var out any
	err = client.Get(context.Background(), "payments", nil, &out)
	require.Error(t, err)
	require.Equal(t, ErrorCodeTransport, GetErrorCode(err))
}
