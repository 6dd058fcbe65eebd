// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package transport expõe o pipeline como serviço: HTTP (gorilla/mux),
// consumer SQS e handler AWS Lambda.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/rs/zerolog"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
)

type contextKey string

const ContextKeyCorrID contextKey = "correlation_id"

// maxBodyBytes limita o payload aceito em POST /runs.
const maxBodyBytes = 4 << 20

// RouterConfig reúne o que o router precisa além do Runner.
type RouterConfig struct {
	Timeout time.Duration // 0 = sem timeout próprio
	Metrics http.Handler  // nil = /metrics não é registrado
	Logger  zerolog.Logger
}

// NewRouter registra as rotas do fetcher:
//
//	POST /runs           executa o payload e devolve o Report
//	POST /runs/validate  só valida o payload
//	GET  /health
//	GET  /metrics        quando há handler Prometheus
func NewRouter(runner Runner, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(ObservabilityMiddleware(cfg.Logger))

	r.HandleFunc("/runs", runHandler(runner, cfg.Timeout)).Methods(http.MethodPost)
	r.HandleFunc("/runs/validate", validateHandler(runner)).Methods(http.MethodPost)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	return r
}

func runHandler(runner Runner, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		report, err := runner.Run(ctx, body)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("execução falhou")
			if report != nil {
				// sink falhou depois das chamadas: devolve o relatório junto
				writeJSON(w, StatusFor(err), map[string]interface{}{"error": err.Error(), "report": report})
				return
			}
			writeError(w, StatusFor(err), err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func validateHandler(runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		batch, err := runner.Validate(body)
		if err != nil {
			writeError(w, StatusFor(err), err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"api_name": batch.APIName,
			"url":      batch.URL,
			"tasks":    len(batch.Tasks),
		})
	}
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("payload excede o limite")
	}
	return body, nil
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NewServer monta o http.Server com timeouts derivados do timeout do job.
func NewServer(port int, handler http.Handler, timeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      timeout + 10*time.Second,
	}
}

// Serve sobe o servidor e faz shutdown quando ctx termina.
func Serve(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Servidor HTTP ouvindo")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("Encerrando servidor HTTP")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", time.Since(rw.startTime).Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga (ou gera) o correlation id, coloca um logger
// contextual no request e registra método, rota, status e latência.
func ObservabilityMiddleware(base zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			reqLog := base.With().Str("correlation_id", corrID).Logger()
			ctx := reqLog.WithContext(r.Context())
			ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)
			ctx = logger.WithField(ctx, "correlation_id", corrID)

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Msg("request completed")
		})
	}
}

// CorrelationID devolve o id propagado pelo middleware, se houver.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyCorrID).(string)
	return id
}
