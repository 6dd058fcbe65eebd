package sink

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/raywall/fast-fetch-toolkit/pkg/records"
	"gopkg.in/yaml.v3"
)

// JSONWriter sobrescreve o arquivo inteiro a cada escrita. Com format "yaml"
// grava YAML em vez de JSON.
type JSONWriter struct {
	path   string
	format string
	mu     sync.Mutex
}

func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path, format: FormatJSON}
}

func NewYAMLWriter(path string) *JSONWriter {
	return &JSONWriter{path: path, format: FormatYAML}
}

func (w *JSONWriter) Write(ctx context.Context, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	return w.WriteValue(ctx, recs)
}

// WriteValue grava qualquer valor serializável substituindo o conteúdo anterior.
func (w *JSONWriter) WriteValue(ctx context.Context, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		b   []byte
		err error
	)
	if w.format == FormatYAML {
		b, err = yaml.Marshal(records.Native(data))
	} else {
		b, err = encodeJSON(data)
	}
	if err != nil {
		return fmt.Errorf("erro ao serializar %s: %w", w.path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := os.WriteFile(w.path, b, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", w.path, err)
	}
	return nil
}

func (w *JSONWriter) Close() error { return nil }
