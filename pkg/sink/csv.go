package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/raywall/fast-fetch-toolkit/pkg/records"
)

// CSVWriter acrescenta linhas a um arquivo delimitado. O header é escrito uma
// única vez, apenas quando o arquivo ainda não existe (ou está vazio).
//
// A escrita não é idempotente: rodar o mesmo lote duas vezes duplica as linhas.
type CSVWriter struct {
	path   string
	fields []string
	mu     sync.Mutex
}

// NewCSVWriter cria o writer. Sem fields as colunas vêm do header existente ou
// da união ordenada das chaves do primeiro lote.
func NewCSVWriter(path string, fields []string) *CSVWriter {
	return &CSVWriter{path: path, fields: fields}
}

func (w *CSVWriter) Write(ctx context.Context, recs []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	exists, err := hasContent(w.path)
	if err != nil {
		return err
	}

	cols := w.fields
	if len(cols) == 0 && exists {
		if cols, err = readHeader(w.path); err != nil {
			return err
		}
	}
	if len(cols) == 0 {
		cols = records.Columns(recs)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("erro ao abrir %s: %w", w.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if !exists {
		if err := cw.Write(cols); err != nil {
			return err
		}
	}
	if err := writeRows(cw, cols, recs); err != nil {
		return fmt.Errorf("erro ao escrever %s: %w", w.path, err)
	}
	return nil
}

func (w *CSVWriter) Close() error { return nil }

func hasContent(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Size() > 0, nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("header inválido em %s: %w", path, err)
	}
	return header, nil
}
