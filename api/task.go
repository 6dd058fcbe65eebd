package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"
)

// Task é uma unidade de trabalho: os parâmetros de uma chamada.
// Não deve ser alterada depois de enviada ao Executor.
type Task map[string]interface{}

// Key é a identidade da tarefa: JSON com chaves ordenadas.
// Tarefas com o mesmo conteúdo compartilham a chave.
func (t Task) Key() string {
	b, err := json.Marshal(map[string]interface{}(t))
	if err != nil {
		// fmt também ordena as chaves de mapas
		return fmt.Sprintf("%v", map[string]interface{}(t))
	}
	return string(b)
}

// Clone faz uma cópia rasa, usada para derivar tarefas novas.
func (t Task) Clone() Task {
	out := make(Task, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Query converte a tarefa em parâmetros de query string.
// Slices viram valores repetidos, objetos são codificados em JSON e nil é ignorado.
func (t Task) Query() url.Values {
	q := url.Values{}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := t[k].(type) {
		case nil:
		case string:
			q.Add(k, v)
		case json.Number:
			q.Add(k, v.String())
		case []string:
			for _, s := range v {
				q.Add(k, s)
			}
		case []interface{}:
			for _, item := range v {
				q.Add(k, scalar(item))
			}
		default:
			q.Add(k, scalar(v))
		}
	}
	return q
}

func scalar(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

// CallResult é o resultado de uma tarefa. Em caso de falha Body é nil e Err
// descreve o motivo.
type CallResult struct {
	Task       Task
	Body       interface{}
	StatusCode int
	Err        error
	Duration   time.Duration
}

func (r CallResult) OK() bool {
	return r.Err == nil
}

// Results agrupa os resultados de um lote pela chave da tarefa.
type Results map[string]CallResult

// Succeeded devolve os resultados com sucesso, ordenados pela chave.
func (r Results) Succeeded() []CallResult {
	return r.filter(true)
}

// Failed devolve os resultados com falha, ordenados pela chave.
func (r Results) Failed() []CallResult {
	return r.filter(false)
}

// Bodies devolve os corpos de sucesso indexados pela chave da tarefa.
func (r Results) Bodies() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for k, res := range r {
		if res.OK() {
			out[k] = res.Body
		}
	}
	return out
}

func (r Results) filter(ok bool) []CallResult {
	keys := make([]string, 0, len(r))
	for k, res := range r {
		if res.OK() == ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]CallResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, r[k])
	}
	return out
}
