package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/fast-fetch-toolkit/pkg/awsutil"
	"github.com/raywall/fast-fetch-toolkit/pkg/config/injector"
	"gopkg.in/yaml.v2"
)

// Load é a função simplificada usada pelos entrypoints.
func Load(ctx context.Context, source string) (*JobConfig, error) {
	return NewLoader().Load(ctx, source)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Loader suporta múltiplas fontes de configuração (Local, S3, DynamoDB).
type Loader struct {
	validator *ConfigValidator
	injector  *injector.Injector

	// Clients opcionais; quando nil o client real é criado sob demanda.
	S3     awsutil.S3Downloader
	Dynamo DynamoGetter
}

func NewLoader() *Loader {
	return &Loader{
		validator: NewValidator(),
		injector:  injector.New(),
	}
}

// WithInjector troca o injector (usado em testes para fontes falsas).
func (l *Loader) WithInjector(inj *injector.Injector) *Loader {
	l.injector = inj
	return l
}

// Load detecta o esquema da fonte e carrega a configuração.
func (l *Loader) Load(ctx context.Context, source string) (*JobConfig, error) {
	rawData, err := l.Read(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", source, err)
	}
	return l.Parse(ctx, rawData)
}

// Read devolve os bytes brutos de uma fonte: "s3://bucket/key",
// "dynamodb://tabela/chave?col=config&pk=id", "file://path" ou apenas "path".
func (l *Loader) Read(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "s3://"):
		client := l.S3
		if client == nil {
			c, err := awsutil.NewS3Client(ctx, os.Getenv("AWS_REGION"))
			if err != nil {
				return nil, err
			}
			client = c
		}
		bucket, key, err := awsutil.ParseS3URI(source)
		if err != nil {
			return nil, err
		}
		return awsutil.ReadObject(ctx, client, bucket, key)

	case strings.HasPrefix(source, "dynamodb://"):
		client := l.Dynamo
		if client == nil {
			cfg, err := awsutil.GetAWSConfig(ctx, os.Getenv("AWS_REGION"))
			if err != nil {
				return nil, err
			}
			client = dynamodb.NewFromConfig(cfg)
		}
		return l.loadFromDynamoDB(ctx, client, source)

	default:
		return os.ReadFile(strings.TrimPrefix(source, "file://"))
	}
}

func (l *Loader) loadFromDynamoDB(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config" // Coluna padrão onde o YAML está salvo
	}

	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item não encontrado no DynamoDB")
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}
	return []byte(content), nil
}

// Parse faz unmarshal, injeção (env/ssm/secret) e validação.
func (l *Loader) Parse(ctx context.Context, data []byte) (*JobConfig, error) {
	var cfg JobConfig

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}

	if l.injector != nil {
		if err := l.injector.Inject(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
		}
	}

	if l.validator != nil {
		if err := l.validator.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("validação da configuração falhou: %w", err)
		}
	}

	return &cfg, nil
}
