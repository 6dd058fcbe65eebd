package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// --- Mocks ---

type MockS3Loader struct {
	GetObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *MockS3Loader) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.GetObjectFunc(ctx, params, optFns...)
}

type MockDynamoLoader struct {
	GetItemFunc func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

func (m *MockDynamoLoader) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return m.GetItemFunc(ctx, params, optFns...)
}

const validYaml = `
version: "1.0"
job:
  name: "jira-issues"
  runtime: "local"
  timeout: "1m"
  logging:
    enabled: true
    level: "info"
    format: "json"
credential:
  type: "env"
  name: "JIRA_TOKEN"
executor:
  workers: 4
  timeout: "10s"
validation:
  apis:
    issues:
      url: "https://jira.local/rest/api/2/search"
      required_params: ["jql"]
output:
  records_path: "issues"
  flatten: true
  columns:
    - name: "id"
      expr: "record.id"
  sinks:
    - type: "csv"
      path: "/tmp/issues.csv"
`

// --- Testes ---

func TestLoader_Load_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(validYaml), 0o644); err != nil {
		t.Fatalf("Erro ao escrever arquivo: %v", err)
	}

	cfg, err := NewLoader().Load(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Erro load local: %v", err)
	}
	if cfg.Job.Name != "jira-issues" {
		t.Errorf("Nome incorreto: %s", cfg.Job.Name)
	}
	if cfg.Executor.Workers != 4 {
		t.Errorf("Workers incorreto: %d", cfg.Executor.Workers)
	}
	if got := cfg.Validation.APIs["issues"].RequiredParams; len(got) != 1 || got[0] != "jql" {
		t.Errorf("Catálogo incorreto: %v", got)
	}
	if cfg.Output.Sinks[0].Path != "/tmp/issues.csv" {
		t.Errorf("Sink incorreto: %+v", cfg.Output.Sinks[0])
	}
}

func TestLoader_Load_InjectsEnv(t *testing.T) {
	os.Setenv("SINK_PATH", "/data/out.csv")
	defer os.Unsetenv("SINK_PATH")

	content := strings.Replace(validYaml, "/tmp/issues.csv", "${env.SINK_PATH}", 1)
	cfg, err := NewLoader().Parse(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("Erro parse: %v", err)
	}
	if cfg.Output.Sinks[0].Path != "/data/out.csv" {
		t.Errorf("Injeção falhou: %s", cfg.Output.Sinks[0].Path)
	}
}

func TestLoader_Parse_Invalid(t *testing.T) {
	t.Run("YAML malformado", func(t *testing.T) {
		if _, err := NewLoader().Parse(context.Background(), []byte("version: [")); err == nil {
			t.Error("Esperava erro de YAML")
		}
	})

	t.Run("Sem catálogo de validação", func(t *testing.T) {
		content := strings.Replace(validYaml, "  apis:", "  none:", 1)
		if _, err := NewLoader().Parse(context.Background(), []byte(content)); err == nil {
			t.Error("Esperava erro semântico")
		}
	})
}

func TestLoader_S3(t *testing.T) {
	mockClient := &MockS3Loader{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			if *params.Bucket != "my-bucket" || *params.Key != "jobs/jira.yaml" {
				t.Errorf("Params S3 incorretos: %v", params)
			}
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(validYaml))}, nil
		},
	}

	loader := NewLoader()
	loader.S3 = mockClient

	cfg, err := loader.Load(context.Background(), "s3://my-bucket/jobs/jira.yaml")
	if err != nil {
		t.Fatalf("Erro s3: %v", err)
	}
	if cfg.Job.Name != "jira-issues" {
		t.Errorf("Conteúdo incorreto")
	}
}

func TestLoader_Dynamo(t *testing.T) {
	mockClient := &MockDynamoLoader{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			if *params.TableName != "Jobs" {
				t.Errorf("Tabela incorreta: %s", *params.TableName)
			}
			key := params.Key["JobName"].(*types.AttributeValueMemberS).Value
			if key != "jira" {
				t.Errorf("PK incorreta: %s", key)
			}
			return &dynamodb.GetItemOutput{
				Item: map[string]types.AttributeValue{
					"yaml_body": &types.AttributeValueMemberS{Value: `version: "1.0"`},
				},
			}, nil
		},
	}

	loader := NewLoader()
	loader.Dynamo = mockClient

	data, err := loader.Read(context.Background(), "dynamodb://Jobs/jira?pk=JobName&col=yaml_body")
	if err != nil {
		t.Fatalf("Erro dynamo: %v", err)
	}
	if string(data) != `version: "1.0"` {
		t.Errorf("Conteúdo incorreto")
	}
}

func TestLoader_Dynamo_NotFound(t *testing.T) {
	loader := NewLoader()
	loader.Dynamo = &MockDynamoLoader{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{}, nil
		},
	}

	if _, err := loader.Read(context.Background(), "dynamodb://Jobs/missing"); err == nil {
		t.Error("Esperava erro de item não encontrado")
	}
}

func TestLoader_LoggingDefault(t *testing.T) {
	t.Run("Sem bloco logging o log fica ligado", func(t *testing.T) {
		raw := strings.Replace(validYaml, "  logging:\n    enabled: true\n    level: \"info\"\n    format: \"json\"\n", "", 1)
		if strings.Contains(raw, "logging") {
			t.Fatal("bloco logging não foi removido do YAML de teste")
		}

		cfg, err := NewLoader().Parse(context.Background(), []byte(raw))
		if err != nil {
			t.Fatalf("Erro parse: %v", err)
		}
		if cfg.Job.Logging.Enabled != nil || !cfg.Job.Logging.IsEnabled() {
			t.Errorf("Esperado log ligado por padrão, atual %+v", cfg.Job.Logging)
		}
	})

	t.Run("enabled false desliga", func(t *testing.T) {
		raw := strings.Replace(validYaml, "enabled: true", "enabled: false", 1)

		cfg, err := NewLoader().Parse(context.Background(), []byte(raw))
		if err != nil {
			t.Fatalf("Erro parse: %v", err)
		}
		if cfg.Job.Logging.IsEnabled() {
			t.Error("enabled: false deveria desligar o log")
		}
	})
}
