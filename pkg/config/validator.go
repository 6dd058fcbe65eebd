package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *JobConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *JobConfig) error {
	// 1. Credencial: cada tipo exige seus campos
	switch cfg.Credential.Type {
	case "static":
		if cfg.Credential.Value == "" {
			return fmt.Errorf("credential static exige 'value'")
		}
	case "ssm", "secret":
		if cfg.Credential.Name == "" {
			return fmt.Errorf("credential %s exige 'name'", cfg.Credential.Type)
		}
	case "oauth2":
		if cfg.Credential.OAuth.TokenURL == "" || cfg.Credential.OAuth.ClientID == "" {
			return fmt.Errorf("credential oauth2 exige 'oauth.token_url' e 'oauth.client_id'")
		}
	}

	// 2. Catálogo de validação precisa existir de alguma forma
	if cfg.Validation.Source == "" && len(cfg.Validation.APIs) == 0 {
		return fmt.Errorf("'validation.source' ou 'validation.apis' é obrigatório")
	}

	// 3. Colunas com nome duplicado quebram o header do CSV
	seen := make(map[string]bool)
	for _, c := range cfg.Output.Columns {
		if seen[c.Name] {
			return fmt.Errorf("coluna duplicada detectada: '%s'", c.Name)
		}
		seen[c.Name] = true
	}

	// 4. Campos obrigatórios por tipo de sink
	for i, s := range cfg.Output.Sinks {
		if err := validateSink(s); err != nil {
			return fmt.Errorf("sink[%d] (%s): %w", i, s.Type, err)
		}
	}

	if p := cfg.Executor.Paging; p != nil && p.TotalPath == "" {
		return fmt.Errorf("'executor.paging.total_path' é obrigatório quando paging está habilitado")
	}

	return nil
}

func validateSink(s SinkConf) error {
	switch s.Type {
	case "csv", "json", "yaml":
		if s.Path == "" {
			return fmt.Errorf("'path' é obrigatório")
		}
	case "s3":
		if s.Bucket == "" || s.Key == "" {
			return fmt.Errorf("'bucket' e 'key' são obrigatórios")
		}
	case "postgres":
		if s.DSN == "" || s.Table == "" || len(s.KeyColumns) == 0 {
			return fmt.Errorf("'dsn', 'table' e 'key_columns' são obrigatórios")
		}
	case "dynamodb":
		if s.Table == "" {
			return fmt.Errorf("'table' é obrigatório")
		}
	case "redis":
		if s.Addr == "" || s.KeyField == "" {
			return fmt.Errorf("'addr' e 'key_field' são obrigatórios")
		}
	}
	return nil
}
