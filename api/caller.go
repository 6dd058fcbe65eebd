package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/raywall/fast-fetch-toolkit/pkg/auth"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/raywall/fast-fetch-toolkit/pkg/records"
	"github.com/rs/zerolog"
)

// maxErrorBody limita o trecho do corpo guardado em HTTPError.
const maxErrorBody = 512

// Caller executa uma chamada para uma tarefa. Nunca deve causar panic: toda
// falha vem em CallResult.Err.
type Caller interface {
	Call(ctx context.Context, rawURL string, task Task) CallResult
}

// HTTPCaller faz GET autenticado com o token obtido a cada chamada.
type HTTPCaller struct {
	client *http.Client
	source auth.Source
	logger zerolog.Logger
}

// NewHTTPCaller cria o caller. timeout <= 0 deixa o cliente sem limite próprio.
func NewHTTPCaller(source auth.Source, timeout time.Duration, logger zerolog.Logger) *HTTPCaller {
	return &HTTPCaller{
		client: &http.Client{Timeout: timeout},
		source: source,
		logger: logger,
	}
}

// WithClient troca o cliente HTTP (transports customizados, testes).
func (c *HTTPCaller) WithClient(client *http.Client) *HTTPCaller {
	c.client = client
	return c
}

func (c *HTTPCaller) Call(ctx context.Context, rawURL string, task Task) CallResult {
	res := CallResult{Task: task}
	key := task.Key()
	callLog := logger.FromContext(ctx, c.logger)

	token, err := c.source.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, auth.ErrCredentialMissing) {
			err = fmt.Errorf("%w: %w", auth.ErrCredentialMissing, err)
		}
		callLog.Error().Err(err).Str("task", key).Msg("credencial indisponível")
		res.Err = err
		return res
	}

	req, err := c.newRequest(ctx, rawURL, task, token)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrTransportFailure, err)
		callLog.Error().Err(res.Err).Str("task", key).Msg("falha ao montar requisição")
		return res
	}

	resp, err := c.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrTransportFailure, err)
		callLog.Error().Err(err).Str("task", key).Msg("erro de transporte na chamada")
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Err = fmt.Errorf("%w: erro lendo corpo: %w", ErrTransportFailure, err)
		callLog.Error().Err(err).Str("task", key).Msg("erro de transporte na chamada")
		return res
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := data
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		res.Err = &HTTPError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
		callLog.Error().Int("status_code", resp.StatusCode).Str("task", key).Msg("chamada retornou status de falha")
		return res
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return res
	}

	var body interface{}
	if err := records.Decode(data, &body); err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		callLog.Error().Err(err).Str("task", key).Msg("resposta não é JSON válido")
		return res
	}
	res.Body = body
	return res
}

func (c *HTTPCaller) newRequest(ctx context.Context, rawURL string, task Task, token string) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, vs := range task.Query() {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
