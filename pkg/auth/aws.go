package auth

import (
	"context"
	"fmt"

	"github.com/raywall/fast-fetch-toolkit/pkg/awsutil"
)

// SSMSource lê o token de um parâmetro do Parameter Store (com decrypt).
type SSMSource struct {
	Client awsutil.SSMClient
	Path   string
}

func (s *SSMSource) Fetch(ctx context.Context) (string, error) {
	val, err := awsutil.GetParameter(ctx, s.Client, s.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentialMissing, err)
	}
	return val, nil
}

// SecretsSource lê o token do Secrets Manager. Field seleciona uma chave
// quando o segredo é um JSON.
type SecretsSource struct {
	Client   awsutil.SecretsClient
	SecretID string
	Field    string
}

func (s *SecretsSource) Fetch(ctx context.Context) (string, error) {
	val, err := awsutil.GetSecret(ctx, s.Client, s.SecretID, s.Field)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentialMissing, err)
	}
	return val, nil
}
