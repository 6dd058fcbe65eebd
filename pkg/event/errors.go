package event

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrUnknownAPI     = errors.New("unknown api")
	ErrInvalidEvent   = errors.New("invalid event")
)

// InvalidEventError lista os parâmetros obrigatórios ausentes.
// Index é a posição da tarefa no lote, ou -1 para um payload único.
type InvalidEventError struct {
	API     string
	Index   int
	Missing []string
}

func (e *InvalidEventError) Error() string {
	where := ""
	if e.Index >= 0 {
		where = fmt.Sprintf(" (tarefa %d)", e.Index)
	}
	return fmt.Sprintf("parâmetros obrigatórios ausentes para '%s'%s: %s", e.API, where, strings.Join(e.Missing, ", "))
}

func (e *InvalidEventError) Unwrap() error {
	return ErrInvalidEvent
}
