package event

import (
	"context"
	"fmt"

	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"gopkg.in/yaml.v3"
)

// APISpec descreve uma API conhecida: endpoint padrão e parâmetros obrigatórios.
type APISpec struct {
	URL            string   `json:"url" yaml:"url"`
	RequiredParams []string `json:"required_params" yaml:"required_params"`
}

// ValidationSpec é o catálogo de APIs indexado pelo nome.
// Formato do arquivo: {"X": {"required_params": ["a", "b"]}} em JSON ou YAML.
type ValidationSpec map[string]APISpec

// ParseSpec lê o catálogo. YAML é superconjunto de JSON, então os dois formatos passam.
func ParseSpec(data []byte) (ValidationSpec, error) {
	var spec ValidationSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("catálogo de validação inválido: %w", err)
	}
	if spec == nil {
		spec = ValidationSpec{}
	}
	return spec, nil
}

// FromConfig converte as APIs declaradas inline no job.
func FromConfig(apis map[string]config.APIConf) ValidationSpec {
	spec := make(ValidationSpec, len(apis))
	for name, a := range apis {
		spec[name] = APISpec{URL: a.URL, RequiredParams: a.RequiredParams}
	}
	return spec
}

// Merge devolve um novo catálogo onde as entradas de other sobrescrevem as de s.
func (s ValidationSpec) Merge(other ValidationSpec) ValidationSpec {
	out := make(ValidationSpec, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// SourceReader lê bytes de uma fonte (arquivo, s3://, dynamodb://).
// *config.Loader satisfaz esta interface.
type SourceReader interface {
	Read(ctx context.Context, source string) ([]byte, error)
}

// LoadSpec lê o catálogo de uma fonte usando o loader padrão.
func LoadSpec(ctx context.Context, source string) (ValidationSpec, error) {
	return LoadSpecFrom(ctx, config.NewLoader(), source)
}

func LoadSpecFrom(ctx context.Context, reader SourceReader, source string) (ValidationSpec, error) {
	data, err := reader.Read(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("falha leitura catálogo (%s): %w", source, err)
	}
	return ParseSpec(data)
}

// SpecFromConfig monta o catálogo final do job: arquivo (se houver) + APIs inline.
func SpecFromConfig(ctx context.Context, reader SourceReader, cfg config.ValidationConf) (ValidationSpec, error) {
	spec := ValidationSpec{}
	if cfg.Source != "" {
		loaded, err := LoadSpecFrom(ctx, reader, cfg.Source)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}
	return spec.Merge(FromConfig(cfg.APIs)), nil
}
