package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrCredentialMissing indica que nenhum token pôde ser resolvido na origem.
var ErrCredentialMissing = errors.New("credential missing")

// DefaultEnvName é a variável lida quando nenhuma é configurada.
const DefaultEnvName = "TOKEN"

// Source fornece um bearer token sob demanda.
// Cada chamada resolve o valor novamente na origem, então rotações de
// segredo ficam transparentes para quem chama. Implementações devem ser
// seguras para uso concorrente.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// SourceFunc adapta uma função comum para a interface Source.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Fetch(ctx context.Context) (string, error) {
	return f(ctx)
}

// EnvSource lê o token de uma variável de ambiente.
type EnvSource struct {
	Name string
}

func NewEnvSource(name string) *EnvSource {
	if name == "" {
		name = DefaultEnvName
	}
	return &EnvSource{Name: name}
}

func (s *EnvSource) Fetch(ctx context.Context) (string, error) {
	name := s.Name
	if name == "" {
		name = DefaultEnvName
	}
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return "", fmt.Errorf("variável de ambiente %s: %w", name, ErrCredentialMissing)
	}
	return val, nil
}

// StaticSource devolve sempre o mesmo valor. Útil em testes e ambientes locais.
type StaticSource string

func (s StaticSource) Fetch(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("token estático: %w", ErrCredentialMissing)
	}
	return string(s), nil
}
