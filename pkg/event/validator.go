package event

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/fast-fetch-toolkit/api"
	"github.com/raywall/fast-fetch-toolkit/pkg/records"
)

// Campos reservados do envelope.
const (
	FieldAPIName = "api_name"
	FieldURL     = "url"
	FieldTasks   = "tasks"
)

// Envelope é o formato de um lote: {"api_name": "X", "url": "...", "tasks": [{...}]}.
type Envelope struct {
	APIName string                   `json:"api_name" validate:"required"`
	URL     string                   `json:"url" validate:"omitempty,url"`
	Tasks   []map[string]interface{} `json:"tasks" validate:"omitempty,dive,required"`
}

// Batch é um lote validado, pronto para o executor.
type Batch struct {
	APIName string
	URL     string
	Tasks   []api.Task
}

// Validator é o portão entre o payload recebido e a camada de rede.
// Nada que falhe aqui deve chegar ao executor.
type Validator struct {
	spec     ValidationSpec
	validate *validator.Validate
}

func NewValidator(spec ValidationSpec) *Validator {
	return &Validator{spec: spec, validate: validator.New()}
}

// Spec devolve o catálogo em uso.
func (v *Validator) Spec() ValidationSpec {
	return v.spec
}

// Validate confere um payload único e o devolve, sem alterações, como Task.
func (v *Validator) Validate(raw []byte) (api.Task, error) {
	payload, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	name, err := apiName(payload)
	if err != nil {
		return nil, err
	}

	spec, err := v.lookup(name)
	if err != nil {
		return nil, err
	}

	if missing := missingParams(payload, spec.RequiredParams); len(missing) > 0 {
		return nil, &InvalidEventError{API: name, Index: -1, Missing: missing}
	}

	return api.Task(payload), nil
}

// ValidateBatch confere um envelope com várias tarefas. Sem "tasks", o próprio
// payload (menos api_name e url) é a única tarefa. A URL do envelope tem
// precedência sobre a do catálogo.
func (v *Validator) ValidateBatch(raw []byte) (Batch, error) {
	payload, err := decodeObject(raw)
	if err != nil {
		return Batch{}, err
	}

	var env Envelope
	if err := records.Decode(raw, &env); err != nil {
		return Batch{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := v.validate.Struct(env); err != nil {
		return Batch{}, fmt.Errorf("%w: %s", ErrMalformedEvent, describe(err))
	}

	spec, err := v.lookup(env.APIName)
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{APIName: env.APIName, URL: env.URL}
	if batch.URL == "" {
		batch.URL = spec.URL
	}

	if _, hasTasks := payload[FieldTasks]; !hasTasks {
		task := api.Task{}
		for k, val := range payload {
			if k != FieldAPIName && k != FieldURL {
				task[k] = val
			}
		}
		if missing := missingParams(task, spec.RequiredParams); len(missing) > 0 {
			return Batch{}, &InvalidEventError{API: env.APIName, Index: -1, Missing: missing}
		}
		batch.Tasks = []api.Task{task}
		return batch, nil
	}

	batch.Tasks = make([]api.Task, 0, len(env.Tasks))
	for i, t := range env.Tasks {
		if missing := missingParams(t, spec.RequiredParams); len(missing) > 0 {
			return Batch{}, &InvalidEventError{API: env.APIName, Index: i, Missing: missing}
		}
		batch.Tasks = append(batch.Tasks, api.Task(t))
	}
	return batch, nil
}

func (v *Validator) lookup(name string) (APISpec, error) {
	spec, ok := v.spec[name]
	if !ok {
		return APISpec{}, fmt.Errorf("%w: '%s' não está no catálogo", ErrUnknownAPI, name)
	}
	return spec, nil
}

func decodeObject(raw []byte) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := records.Decode(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: payload vazio", ErrMalformedEvent)
	}
	return payload, nil
}

func apiName(payload map[string]interface{}) (string, error) {
	name, ok := payload[FieldAPIName].(string)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: campo '%s' ausente ou não é texto", ErrMalformedEvent, FieldAPIName)
	}
	return name, nil
}

// missingParams devolve, em ordem alfabética, os obrigatórios que não são chaves do payload.
func missingParams(payload map[string]interface{}, required []string) []string {
	var missing []string
	for _, p := range required {
		if _, ok := payload[p]; !ok {
			missing = append(missing, p)
		}
	}
	sort.Strings(missing)
	return missing
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
	}
	return strings.Join(msgs, "; ")
}
