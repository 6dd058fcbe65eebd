package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer from-env", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"issues": [{"key": "OPS-1"}]}`)
	}))
	defer server.Close()

	t.Setenv("JIRA_TOKEN", "from-env")
	dir := t.TempDir()
	out := filepath.Join(dir, "issues.json")

	cfg := &config.JobConfig{
		Version:    "v1",
		Job:        config.JobDetails{Name: "jira", Runtime: config.RuntimeLocal},
		Credential: config.CredentialConf{Type: "env", Name: "JIRA_TOKEN"},
		Executor:   config.ExecutorConf{Workers: 2, Timeout: "5s"},
		Validation: config.ValidationConf{APIs: map[string]config.APIConf{
			"issues": {URL: server.URL, RequiredParams: []string{"jql"}},
		}},
		Output: config.OutputConf{
			RecordsPath: "issues",
			Sinks:       []config.SinkConf{{Type: "json", Path: out}},
		},
	}

	r, err := FromConfig(context.Background(), cfg, config.NewLoader(), zerolog.Nop(), nil)
	require.NoError(t, err)
	defer r.Close()

	report, err := r.Run(context.Background(), []byte(`{"api_name": "issues", "jql": "project = OPS"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key": "OPS-1"}]`, string(b))
}

func TestFromConfig_Errors(t *testing.T) {
	base := config.JobConfig{
		Validation: config.ValidationConf{APIs: map[string]config.APIConf{"x": {}}},
	}

	bad := base
	bad.Output.Filter = "record.a =="
	_, err := FromConfig(context.Background(), &bad, config.NewLoader(), zerolog.Nop(), nil)
	assert.ErrorContains(t, err, "filtro")

	missing := base
	missing.Validation.Source = filepath.Join(t.TempDir(), "nope.yaml")
	_, err = FromConfig(context.Background(), &missing, config.NewLoader(), zerolog.Nop(), nil)
	assert.Error(t, err)

	unknown := base
	unknown.Credential.Type = "kerberos"
	_, err = FromConfig(context.Background(), &unknown, config.NewLoader(), zerolog.Nop(), nil)
	assert.Error(t, err)
}
