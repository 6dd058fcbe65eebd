package awsutil

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// --- Mocks ---

type MockSSM struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func (m *MockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterFunc(ctx, params, optFns...)
}

type MockSecrets struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *MockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

func secretReturning(s string) *MockSecrets {
	return &MockSecrets{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: &s}, nil
		},
	}
}

// --- Testes ---

func TestGetParameter(t *testing.T) {
	t.Run("Sucesso", func(t *testing.T) {
		mockVal := "my-token"
		client := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				if *params.Name != "/app/token" {
					t.Errorf("Path esperado /app/token, recebido %s", *params.Name)
				}
				if !*params.WithDecryption {
					t.Error("Esperado WithDecryption true")
				}
				return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: &mockVal}}, nil
			},
		}

		val, err := GetParameter(context.Background(), client, "/app/token")
		if err != nil {
			t.Fatalf("Erro inesperado: %v", err)
		}
		if val != mockVal {
			t.Errorf("Valor incorreto: %v", val)
		}
	})

	t.Run("Valor vazio", func(t *testing.T) {
		empty := ""
		client := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: &empty}}, nil
			},
		}

		_, err := GetParameter(context.Background(), client, "/app/token")
		if !errors.Is(err, ErrEmptyValue) {
			t.Errorf("Esperado ErrEmptyValue, recebido %v", err)
		}
	})

	t.Run("Erro na AWS", func(t *testing.T) {
		client := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return nil, errors.New("AWS down")
			},
		}

		if _, err := GetParameter(context.Background(), client, "/app/token"); err == nil {
			t.Error("Esperava erro, recebido nil")
		}
	})
}

func TestGetSecret(t *testing.T) {
	t.Run("String pura", func(t *testing.T) {
		val, err := GetSecret(context.Background(), secretReturning("just-a-token"), "my-secret", "")
		if err != nil {
			t.Fatalf("Erro inesperado: %v", err)
		}
		if val != "just-a-token" {
			t.Errorf("Valor incorreto: %v", val)
		}
	})

	t.Run("Campo de JSON", func(t *testing.T) {
		val, err := GetSecret(context.Background(), secretReturning(`{"token": "abc", "user": "x"}`), "my-secret", "token")
		if err != nil {
			t.Fatalf("Erro inesperado: %v", err)
		}
		if val != "abc" {
			t.Errorf("Valor incorreto: %v", val)
		}
	})

	t.Run("Campo inexistente", func(t *testing.T) {
		_, err := GetSecret(context.Background(), secretReturning(`{"user": "x"}`), "my-secret", "token")
		if !errors.Is(err, ErrEmptyValue) {
			t.Errorf("Esperado ErrEmptyValue, recebido %v", err)
		}
	})

	t.Run("Campo pedido em segredo não JSON", func(t *testing.T) {
		if _, err := GetSecret(context.Background(), secretReturning("plain"), "my-secret", "token"); err == nil {
			t.Error("Esperava erro, recebido nil")
		}
	})
}
