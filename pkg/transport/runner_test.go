package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/raywall/fast-fetch-toolkit/pkg/event"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/raywall/fast-fetch-toolkit/pkg/pipeline"
	"github.com/rs/zerolog"
)

// MockRunner registra os payloads recebidos.
type MockRunner struct {
	RunFunc      func(ctx context.Context, raw []byte) (*pipeline.Report, error)
	ValidateFunc func(raw []byte) (event.Batch, error)

	mu       sync.Mutex
	payloads []string
}

func (m *MockRunner) Run(ctx context.Context, raw []byte) (*pipeline.Report, error) {
	m.mu.Lock()
	m.payloads = append(m.payloads, string(raw))
	m.mu.Unlock()
	return m.RunFunc(ctx, raw)
}

func (m *MockRunner) Validate(raw []byte) (event.Batch, error) {
	return m.ValidateFunc(raw)
}

func (m *MockRunner) Payloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.payloads...)
}

// contextField devolve o campo que um logger derivado do contexto carregaria.
func contextField(ctx context.Context, key string) string {
	var buf bytes.Buffer
	l := logger.FromContext(ctx, zerolog.New(&buf))
	l.Info().Msg("")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		return ""
	}
	v, _ := entry[key].(string)
	return v
}
