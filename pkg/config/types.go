package config

import "time"

// Runtimes suportados pelo job.
const (
	RuntimeLocal  = "local"
	RuntimeLambda = "lambda"
	RuntimeServer = "server"
	RuntimeSQS    = "sqs"
)

// JobConfig representa a estrutura raiz do arquivo YAML de um job de extração.
type JobConfig struct {
	Version    string         `yaml:"version" validate:"required"`
	Job        JobDetails     `yaml:"job" validate:"required"`
	Credential CredentialConf `yaml:"credential"`
	Executor   ExecutorConf   `yaml:"executor"`
	Validation ValidationConf `yaml:"validation"`
	Output     OutputConf     `yaml:"output"`
}

// JobDetails contém os metadados e configurações de runtime do job.
type JobDetails struct {
	Name    string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" validate:"required,oneof=local lambda server sqs"`
	Port    int         `yaml:"port" validate:"required_if=Runtime server"`
	Queue   string      `yaml:"queue" validate:"required_if=Runtime sqs"`
	Timeout string      `yaml:"timeout"` // Ex: "30s", "2m"
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

// LoggingConf controla o logger do job. Sem o campo enabled o log fica ligado.
type LoggingConf struct {
	Enabled *bool  `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog    DatadogConf    `yaml:"datadog"`
	Prometheus PrometheusConf `yaml:"prometheus"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

type PrometheusConf struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// CredentialConf descreve de onde vem o bearer token usado nas chamadas.
// Type vazio equivale a "env" lendo a variável TOKEN.
type CredentialConf struct {
	Type   string    `yaml:"type" validate:"omitempty,oneof=env static ssm secret oauth2"`
	Name   string    `yaml:"name"`  // variável de ambiente, path do SSM ou id do segredo
	Value  string    `yaml:"value"` // apenas para static
	Field  string    `yaml:"field"` // campo do segredo quando ele é um JSON
	Region string    `yaml:"region"`
	OAuth  OAuthConf `yaml:"oauth"`
}

type OAuthConf struct {
	TokenURL     string `yaml:"token_url" json:"token_url"`
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	Scope        string `yaml:"scope" json:"scope"`
}

type ExecutorConf struct {
	Workers int         `yaml:"workers" validate:"gte=0"` // 0 = número de CPUs
	Timeout string      `yaml:"timeout"`                  // timeout do cliente HTTP
	Paging  *PagingConf `yaml:"paging"`
}

// PagingConf habilita a busca paginada por offset (startAt/maxResults/total).
type PagingConf struct {
	StartParam string `yaml:"start_param"`
	SizeParam  string `yaml:"size_param"`
	PageSize   int    `yaml:"page_size" validate:"gte=0"`
	TotalPath  string `yaml:"total_path"`
	MaxPages   int    `yaml:"max_pages" validate:"gte=0"` // 0 = 1000 páginas por tarefa
}

// ValidationConf define o catálogo de parâmetros obrigatórios por API.
// Source aponta para um arquivo (local ou s3://) e APIs permite declarar inline;
// entradas inline sobrescrevem as do arquivo.
type ValidationConf struct {
	Source string             `yaml:"source"`
	APIs   map[string]APIConf `yaml:"apis" validate:"dive"`
}

type APIConf struct {
	URL            string   `yaml:"url" json:"url"`
	RequiredParams []string `yaml:"required_params" json:"required_params"`
}

type OutputConf struct {
	RecordsPath string       `yaml:"records_path"`
	Flatten     bool         `yaml:"flatten"`
	Separator   string       `yaml:"separator"`
	Filter      string       `yaml:"filter"`
	Columns     []ColumnConf `yaml:"columns" validate:"dive"`
	Sinks       []SinkConf   `yaml:"sinks" validate:"dive"`
}

type ColumnConf struct {
	Name string `yaml:"name" validate:"required"`
	Expr string `yaml:"expr" validate:"required"`
}

type SinkConf struct {
	Type   string   `yaml:"type" validate:"required,oneof=csv json yaml s3 postgres dynamodb redis"`
	Path   string   `yaml:"path"`
	Fields []string `yaml:"fields"`

	// s3 / dynamodb
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
	Format string `yaml:"format" validate:"omitempty,oneof=csv json yaml"`
	Region string `yaml:"region"`

	// postgres / dynamodb
	DSN         string   `yaml:"dsn"`
	Table       string   `yaml:"table"`
	KeyColumns  []string `yaml:"key_columns"`
	CreateTable bool     `yaml:"create_table"`

	// redis
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	KeyField string `yaml:"key_field"`
	TTL      string `yaml:"ttl"`
}

func (j JobDetails) GetTimeout() time.Duration {
	d, err := time.ParseDuration(j.Timeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

func (e ExecutorConf) GetTimeout() time.Duration {
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// IsEnabled trata enabled ausente como true.
func (l LoggingConf) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

// GetTTL retorna zero quando não configurado (sem expiração).
func (s SinkConf) GetTTL() time.Duration {
	d, err := time.ParseDuration(s.TTL)
	if err != nil {
		return 0
	}
	return d
}
