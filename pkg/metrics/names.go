package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// Métricas emitidas pelo executor e pelo pipeline.
const (
	TasksSucceeded = "tasks.succeeded"
	TasksFailed    = "tasks.failed"
	TaskDuration   = "task.duration_ms"
	BatchSize      = "batch.size"
	RecordsWritten = "records.written"
	SinkFailures   = "sink.failures"
)

// Tags monta tags no formato "chave:valor" em ordem estável.
func Tags(kv map[string]string) []string {
	tags := make([]string, 0, len(kv))
	for k, v := range kv {
		tags = append(tags, fmt.Sprintf("%s:%s", k, v))
	}
	sort.Strings(tags)
	return tags
}

// SplitTag separa "chave:valor"; tags sem ':' viram chave com valor vazio.
func SplitTag(tag string) (string, string) {
	k, v, _ := strings.Cut(tag, ":")
	return k, v
}
