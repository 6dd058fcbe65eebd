package rules

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// Variáveis disponíveis nas expressões.
const (
	VarRecord = "record" // registro extraído da resposta
	VarTask   = "task"   // parâmetros da tarefa que gerou o registro
)

// RuleManager gerencia a compilação e avaliação de expressões CEL.
type RuleManager struct {
	env *cel.Env
}

// NewRuleManager inicializa o ambiente CEL com as variáveis padrão esperadas.
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.StdLib(),
		cel.Variable(VarRecord, cel.DynType),
		cel.Variable(VarTask, cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	return &RuleManager{env: env}, nil
}

// EvaluateBool processa regras de filtro (deve retornar true/false).
func (rm *RuleManager) EvaluateBool(expression string, ctx map[string]interface{}) (bool, error) {
	if expression == "" {
		return true, nil // Expressão vazia = aprova
	}

	prg, err := rm.CompileProgram(expression)
	if err != nil {
		return false, err
	}
	return evalBool(prg, ctx)
}

// EvaluateValue processa regras de transformação (retorna um valor dinâmico).
func (rm *RuleManager) EvaluateValue(expression string, ctx map[string]interface{}) (interface{}, error) {
	if expression == "" {
		return nil, nil
	}

	prg, err := rm.CompileProgram(expression)
	if err != nil {
		return nil, err
	}
	return evalValue(prg, ctx)
}

// CompileProgram expõe a compilação do CEL.
func (rm *RuleManager) CompileProgram(expr string) (cel.Program, error) {
	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro compilação CEL '%s': %w", expr, issues.Err())
	}
	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar programa CEL: %w", err)
	}
	return prg, nil
}

func evalBool(prg cel.Program, ctx map[string]interface{}) (bool, error) {
	out, _, err := prg.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("erro execução CEL: %w", err)
	}
	if val, ok := out.Value().(bool); ok {
		return val, nil
	}
	return false, fmt.Errorf("resultado não é booleano")
}

func evalValue(prg cel.Program, ctx map[string]interface{}) (interface{}, error) {
	out, _, err := prg.Eval(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro execução CEL: %w", err)
	}
	return native(out), nil
}

var (
	mapType  = reflect.TypeOf(map[string]interface{}{})
	listType = reflect.TypeOf([]interface{}{})
)

// native converte listas e mapas do CEL para tipos Go comuns.
func native(v ref.Val) interface{} {
	switch v.Type() {
	case types.NullType:
		return nil
	case types.MapType:
		if m, err := v.ConvertToNative(mapType); err == nil {
			return m
		}
	case types.ListType:
		if l, err := v.ConvertToNative(listType); err == nil {
			return l
		}
	}
	return v.Value()
}
