package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestSSMSource(t *testing.T) {
	ctx := context.Background()

	t.Run("Sucesso", func(t *testing.T) {
		src := &SSMSource{
			Path: "/jira/token",
			Client: &MockSSM{GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				assert.Equal(t, "/jira/token", *params.Name)
				return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String("ssm-token")}}, nil
			}},
		}
		token, err := src.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ssm-token", token)
	})

	t.Run("Erro da AWS vira CredentialMissing", func(t *testing.T) {
		src := &SSMSource{
			Path: "/jira/token",
			Client: &MockSSM{GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return nil, errors.New("ParameterNotFound")
			}},
		}
		_, err := src.Fetch(ctx)
		assert.ErrorIs(t, err, ErrCredentialMissing)
	})
}

func TestSecretsSource(t *testing.T) {
	src := &SecretsSource{
		SecretID: "jira",
		Field:    "token",
		Client: &MockSecrets{GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"token":"secret-token"}`)}, nil
		}},
	}
	token, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)

	src.Field = "missing"
	_, err = src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrCredentialMissing)
}
