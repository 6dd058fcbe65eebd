package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raywall/fast-fetch-toolkit/pkg/auth"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logLines decodifica cada linha JSON emitida pelo zerolog.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(l), &m), l)
		lines = append(lines, m)
	}
	return lines
}

func TestHTTPCaller_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "project = OPS", r.URL.Query().Get("jql"))
		assert.Equal(t, "2", r.URL.Query().Get("version"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"total": 3, "issues": []}`))
	}))
	defer server.Close()

	caller := NewHTTPCaller(auth.StaticSource("abc"), 5*time.Second, zerolog.Nop())
	res := caller.Call(context.Background(), server.URL+"?version=2", Task{"jql": "project = OPS"})

	require.True(t, res.OK(), "erro: %v", res.Err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body := res.Body.(map[string]interface{})
	assert.Equal(t, json.Number("3"), body["total"])
}

func TestHTTPCaller_Failures(t *testing.T) {
	t.Run("Status fora de 2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}))
		defer server.Close()

		var buf bytes.Buffer
		caller := NewHTTPCaller(auth.StaticSource("abc"), time.Second, zerolog.New(&buf))
		task := Task{"id": 7}
		res := caller.Call(context.Background(), server.URL, task)

		assert.False(t, res.OK())
		assert.Nil(t, res.Body)
		assert.ErrorIs(t, res.Err, ErrHTTPFailure)

		var httpErr *HTTPError
		require.True(t, errors.As(res.Err, &httpErr))
		assert.Equal(t, 500, httpErr.StatusCode)
		assert.Equal(t, "boom", httpErr.Body)

		lines := logLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "error", lines[0]["level"])
		assert.Equal(t, float64(500), lines[0]["status_code"])
		assert.Equal(t, task.Key(), lines[0]["task"])
	})

	t.Run("Erro de transporte", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		var buf bytes.Buffer
		caller := NewHTTPCaller(auth.StaticSource("abc"), time.Second, zerolog.New(&buf))
		res := caller.Call(context.Background(), url, Task{"id": 1})

		assert.ErrorIs(t, res.Err, ErrTransportFailure)
		lines := logLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "error")
		assert.Contains(t, lines[0], "task")
	})

	t.Run("Credencial ausente não faz chamada", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		t.Setenv("MISSING_TOKEN", "")
		caller := NewHTTPCaller(auth.NewEnvSource("MISSING_TOKEN"), time.Second, zerolog.Nop())
		res := caller.Call(context.Background(), server.URL, Task{"id": 1})

		assert.ErrorIs(t, res.Err, auth.ErrCredentialMissing)
		assert.False(t, called)
	})

	t.Run("Erro genérico da origem também é CredentialMissing", func(t *testing.T) {
		src := auth.SourceFunc(func(ctx context.Context) (string, error) { return "", errors.New("vault offline") })
		caller := NewHTTPCaller(src, time.Second, zerolog.Nop())
		res := caller.Call(context.Background(), "http://127.0.0.1:1", Task{})
		assert.ErrorIs(t, res.Err, auth.ErrCredentialMissing)
	})

	t.Run("JSON inválido", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer server.Close()

		caller := NewHTTPCaller(auth.StaticSource("abc"), time.Second, zerolog.Nop())
		res := caller.Call(context.Background(), server.URL, Task{})
		assert.ErrorIs(t, res.Err, ErrDecodeFailure)
		assert.Nil(t, res.Body)
	})

	t.Run("URL inválida", func(t *testing.T) {
		caller := NewHTTPCaller(auth.StaticSource("abc"), time.Second, zerolog.Nop())
		res := caller.Call(context.Background(), "://sem-esquema", Task{})
		assert.ErrorIs(t, res.Err, ErrTransportFailure)
	})
}

func TestHTTPCaller_ContextFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var buf bytes.Buffer
	caller := NewHTTPCaller(auth.StaticSource("abc"), time.Second, zerolog.New(&buf))
	ctx := logger.WithField(context.Background(), "correlation_id", "corr-9")
	caller.Call(ctx, server.URL, Task{"id": 1})

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "corr-9", lines[0]["correlation_id"])
	assert.Equal(t, float64(502), lines[0]["status_code"])
}

func TestHTTPCaller_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	caller := NewHTTPCaller(auth.StaticSource("abc"), time.Second, zerolog.Nop()).WithClient(server.Client())
	res := caller.Call(context.Background(), server.URL, Task{})
	assert.True(t, res.OK())
	assert.Nil(t, res.Body)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}
