package rules

import (
	"encoding/json"
	"testing"

	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/raywall/fast-fetch-toolkit/pkg/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjector(t *testing.T) {
	rm, err := NewRuleManager()
	require.NoError(t, err)

	p, err := NewProjector(rm, "record.fields.status.name != 'Done'", []config.ColumnConf{
		{Name: "key", Expr: "record.key"},
		{Name: "status", Expr: "record.fields.status.name"},
		{Name: "project", Expr: "task.project"},
		{Name: "points", Expr: "record.fields.points * 2"},
		{Name: "labels", Expr: "record.fields.labels"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"key", "status", "project", "points", "labels"}, p.Columns())

	task := map[string]interface{}{"project": "OPS"}

	t.Run("Registro projetado", func(t *testing.T) {
		rec := records.Record{
			"key": "OPS-1",
			"fields": map[string]interface{}{
				"status": map[string]interface{}{"name": "Open"},
				"points": json.Number("3"),
				"labels": []interface{}{"infra"},
			},
		}

		out, keep, err := p.Apply(rec, task)
		require.NoError(t, err)
		require.True(t, keep)
		assert.Equal(t, records.Record{
			"key":     "OPS-1",
			"status":  "Open",
			"project": "OPS",
			"points":  int64(6),
			"labels":  []interface{}{"infra"},
		}, out)
	})

	t.Run("Filtro descarta", func(t *testing.T) {
		rec := records.Record{
			"key":    "OPS-2",
			"fields": map[string]interface{}{"status": map[string]interface{}{"name": "Done"}},
		}
		_, keep, err := p.Apply(rec, task)
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("Campo ausente é erro", func(t *testing.T) {
		_, _, err := p.Apply(records.Record{"key": "OPS-3"}, task)
		assert.Error(t, err)
	})
}

func TestProjector_Passthrough(t *testing.T) {
	rm, _ := NewRuleManager()
	p, err := NewProjector(rm, "", nil)
	require.NoError(t, err)

	rec := records.Record{"a": 1}
	out, keep, err := p.Apply(rec, nil)
	require.NoError(t, err)
	assert.True(t, keep)
	assert.Equal(t, rec, out)

	var nilProjector *Projector
	out, keep, _ = nilProjector.Apply(rec, nil)
	assert.True(t, keep)
	assert.Equal(t, rec, out)
}

func TestProjector_InvalidExpressions(t *testing.T) {
	rm, _ := NewRuleManager()

	_, err := NewProjector(rm, "record.a ==", nil)
	assert.ErrorContains(t, err, "filtro")

	_, err = NewProjector(rm, "", []config.ColumnConf{{Name: "x", Expr: "1 +"}})
	assert.ErrorContains(t, err, "coluna 'x'")
}
