package auth

import (
	"context"
	"fmt"

	"github.com/raywall/fast-fetch-toolkit/pkg/awsutil"
	"github.com/raywall/fast-fetch-toolkit/pkg/config"
)

// New escolhe a implementação de Source a partir da configuração do job.
func New(ctx context.Context, cfg config.CredentialConf) (Source, error) {
	switch cfg.Type {
	case "", "env":
		return NewEnvSource(cfg.Name), nil

	case "static":
		return StaticSource(cfg.Value), nil

	case "ssm":
		client, err := awsutil.NewSSMClient(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("falha ao criar client ssm: %w", err)
		}
		return &SSMSource{Client: client, Path: cfg.Name}, nil

	case "secret":
		client, err := awsutil.NewSecretsClient(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("falha ao criar client secretsmanager: %w", err)
		}
		return &SecretsSource{Client: client, SecretID: cfg.Name, Field: cfg.Field}, nil

	case "oauth2":
		return NewClientCredentialsSource(cfg.OAuth, nil), nil
	}

	return nil, fmt.Errorf("tipo de credencial desconhecido: %s", cfg.Type)
}
