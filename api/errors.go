package api

import (
	"errors"
	"fmt"
)

var (
	ErrHTTPFailure      = errors.New("http failure")
	ErrTransportFailure = errors.New("transport failure")
	ErrDecodeFailure    = errors.New("decode failure")
	ErrEmptyTaskBatch   = errors.New("empty task batch")
)

// HTTPError representa uma resposta fora da faixa 2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return ErrHTTPFailure
}

// PanicError guarda um panic recuperado durante a execução de uma tarefa.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic na execução da tarefa: %v", e.Value)
}
