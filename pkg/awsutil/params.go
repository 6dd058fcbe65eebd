package awsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrEmptyValue indica que o parâmetro/segredo existe mas não tem valor.
var ErrEmptyValue = errors.New("valor vazio")

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// NewSSMClient cria o client real do Parameter Store.
func NewSSMClient(ctx context.Context, region string) (SSMClient, error) {
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return ssm.NewFromConfig(cfg), nil
}

// NewSecretsClient cria o client real do Secrets Manager.
func NewSecretsClient(ctx context.Context, region string) (SecretsClient, error) {
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// GetParameter lê um parâmetro do SSM, sempre com decrypt.
func GetParameter(ctx context.Context, client SSMClient, path string) (string, error) {
	decrypt := true
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &path,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return "", fmt.Errorf("parâmetro %s: %w", path, ErrEmptyValue)
	}
	return *out.Parameter.Value, nil
}

// GetSecret lê um segredo do Secrets Manager. Quando field é informado o segredo
// é tratado como JSON e apenas o campo pedido é retornado.
func GetSecret(ctx context.Context, client SecretsClient, secretID, field string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager: %w", err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("segredo %s: %w", secretID, ErrEmptyValue)
	}

	val := *out.SecretString
	if field == "" {
		return val, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("segredo %s não é JSON: %w", secretID, err)
	}
	fieldVal, ok := data[field]
	if !ok || fieldVal == nil {
		return "", fmt.Errorf("campo %s do segredo %s: %w", field, secretID, ErrEmptyValue)
	}
	s := fmt.Sprintf("%v", fieldVal)
	if s == "" {
		return "", fmt.Errorf("campo %s do segredo %s: %w", field, secretID, ErrEmptyValue)
	}
	return s, nil
}
