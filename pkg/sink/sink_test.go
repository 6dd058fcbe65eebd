package sink

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSink struct {
	WriteFunc func(ctx context.Context, recs []Record) error
	closed    bool
}

func (m *MockSink) Write(ctx context.Context, recs []Record) error { return m.WriteFunc(ctx, recs) }
func (m *MockSink) Close() error {
	m.closed = true
	return nil
}

func TestMulti(t *testing.T) {
	var got int
	ok := &MockSink{WriteFunc: func(ctx context.Context, recs []Record) error {
		got += len(recs)
		return nil
	}}
	bad := &MockSink{WriteFunc: func(ctx context.Context, recs []Record) error {
		return errors.New("disco cheio")
	}}

	m := Multi{ok, bad, ok}
	err := m.Write(context.Background(), []Record{{"a": 1}})
	assert.ErrorContains(t, err, "disco cheio")
	assert.Equal(t, 2, got, "sinks seguintes continuam recebendo")

	require.NoError(t, m.Close())
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New(ctx, config.SinkConf{Type: "csv", Path: filepath.Join(dir, "a.csv")})
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, s)

	s, err = New(ctx, config.SinkConf{Type: "json", Path: filepath.Join(dir, "a.json")})
	require.NoError(t, err)
	assert.IsType(t, &JSONWriter{}, s)

	s, err = New(ctx, config.SinkConf{Type: "redis", Addr: "localhost:6379", KeyField: "id"})
	require.NoError(t, err)
	assert.IsType(t, &RedisWriter{}, s)
	_ = s.Close()

	_, err = New(ctx, config.SinkConf{Type: "kafka"})
	assert.Error(t, err)

	all, err := NewAll(ctx, []config.SinkConf{
		{Type: "csv", Path: filepath.Join(dir, "b.csv")},
		{Type: "yaml", Path: filepath.Join(dir, "b.yaml")},
	})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
