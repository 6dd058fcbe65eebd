package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output é o destino dos logs habilitados (trocado nos testes).
var Output io.Writer = os.Stdout

// Configure inicializa o logger global baseando-se na configuração do YAML.
// Deve ser chamado uma única vez no boot; os componentes recebem o logger por valor.
func Configure(cfg config.LoggingConf) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Define o output (JSON para produção, Console "bonito" para local se solicitado)
	out := Output
	if !cfg.IsEnabled() {
		out = io.Discard
	} else if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: Output, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).
		With().
		Timestamp().
		Logger()

	log.Logger = logger
	return logger
}

// Component cria um logger filho identificado pelo componente.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

type fieldsKey struct{}

type field struct {
	key, value string
}

// WithField anexa um campo (correlation_id, message_id) que os loggers
// derivados com FromContext vão carregar.
func WithField(ctx context.Context, key, value string) context.Context {
	prev, _ := ctx.Value(fieldsKey{}).([]field)
	fields := make([]field, 0, len(prev)+1)
	fields = append(append(fields, prev...), field{key: key, value: value})
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FromContext devolve base acrescido dos campos anexados ao contexto.
func FromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	fields, _ := ctx.Value(fieldsKey{}).([]field)
	if len(fields) == 0 {
		return base
	}
	c := base.With()
	for _, f := range fields {
		c = c.Str(f.key, f.value)
	}
	return c.Logger()
}
