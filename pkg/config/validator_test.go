package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator()

	validJob := JobDetails{
		Name:    "jira-issues",
		Runtime: "local",
		Timeout: "1m",
		Logging: LoggingConf{Level: "info", Format: "console"},
	}
	validCatalog := ValidationConf{
		APIs: map[string]APIConf{"issues": {RequiredParams: []string{"jql"}}},
	}

	tests := []struct {
		name    string
		cfg     *JobConfig
		wantErr bool
	}{
		{
			name:    "Valid Config",
			cfg:     &JobConfig{Version: "1.0", Job: validJob, Validation: validCatalog},
			wantErr: false,
		},
		{
			name: "Server runtime sem porta",
			cfg: &JobConfig{
				Version:    "1.0",
				Job:        JobDetails{Name: "jira", Runtime: "server"},
				Validation: validCatalog,
			},
			wantErr: true,
		},
		{
			name: "Runtime desconhecido",
			cfg: &JobConfig{
				Version:    "1.0",
				Job:        JobDetails{Name: "jira", Runtime: "cron"},
				Validation: validCatalog,
			},
			wantErr: true,
		},
		{
			name:    "Sem catálogo",
			cfg:     &JobConfig{Version: "1.0", Job: validJob},
			wantErr: true,
		},
		{
			name: "Credencial static sem valor",
			cfg: &JobConfig{
				Version:    "1.0",
				Job:        validJob,
				Credential: CredentialConf{Type: "static"},
				Validation: validCatalog,
			},
			wantErr: true,
		},
		{
			name: "Sink csv sem path",
			cfg: &JobConfig{
				Version:    "1.0",
				Job:        validJob,
				Validation: validCatalog,
				Output:     OutputConf{Sinks: []SinkConf{{Type: "csv"}}},
			},
			wantErr: true,
		},
		{
			name: "Sink postgres completo",
			cfg: &JobConfig{
				Version:    "1.0",
				Job:        validJob,
				Validation: validCatalog,
				Output: OutputConf{Sinks: []SinkConf{{
					Type: "postgres", DSN: "postgres://localhost/db", Table: "jsm", KeyColumns: []string{"id"},
				}}},
			},
			wantErr: false,
		},
		{
			name: "Colunas duplicadas",
			cfg: &JobConfig{
				Version:    "1.0",
				Job:        validJob,
				Validation: validCatalog,
				Output: OutputConf{Columns: []ColumnConf{
					{Name: "id", Expr: "record.id"},
					{Name: "id", Expr: "record.key"},
				}},
			},
			wantErr: true,
		},
		{
			name: "Paging sem total_path",
			cfg: &JobConfig{
				Version:    "1.0",
				Job:        validJob,
				Validation: validCatalog,
				Executor:   ExecutorConf{Paging: &PagingConf{PageSize: 50}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeouts(t *testing.T) {
	assert.Equal(t, "1m0s", JobDetails{Timeout: "1m"}.GetTimeout().String())
	assert.Equal(t, "5m0s", JobDetails{}.GetTimeout().String())
	assert.Equal(t, "30s", ExecutorConf{}.GetTimeout().String())
	assert.Equal(t, "0s", SinkConf{}.GetTTL().String())
}
