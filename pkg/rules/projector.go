package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/raywall/fast-fetch-toolkit/pkg/records"
)

type column struct {
	name string
	prg  cel.Program
}

// Projector aplica filtro e projeção de colunas (CEL) a cada registro.
// As expressões são compiladas uma vez, na construção.
type Projector struct {
	filter  cel.Program
	columns []column
}

// NewProjector compila o filtro (opcional) e as colunas na ordem configurada.
func NewProjector(rm *RuleManager, filter string, cols []config.ColumnConf) (*Projector, error) {
	p := &Projector{}

	if filter != "" {
		prg, err := rm.CompileProgram(filter)
		if err != nil {
			return nil, fmt.Errorf("filtro inválido: %w", err)
		}
		p.filter = prg
	}

	for _, c := range cols {
		prg, err := rm.CompileProgram(c.Expr)
		if err != nil {
			return nil, fmt.Errorf("coluna '%s': %w", c.Name, err)
		}
		p.columns = append(p.columns, column{name: c.Name, prg: prg})
	}

	return p, nil
}

// Columns devolve os nomes das colunas projetadas, na ordem configurada.
func (p *Projector) Columns() []string {
	names := make([]string, len(p.columns))
	for i, c := range p.columns {
		names[i] = c.name
	}
	return names
}

// Apply devolve o registro projetado e false quando o filtro o descarta.
// Sem colunas configuradas o registro passa inteiro.
func (p *Projector) Apply(record records.Record, task map[string]interface{}) (records.Record, bool, error) {
	if p == nil {
		return record, true, nil
	}

	ctx := map[string]interface{}{
		VarRecord: records.Native(record),
		VarTask:   records.Native(task),
	}

	if p.filter != nil {
		keep, err := evalBool(p.filter, ctx)
		if err != nil {
			return nil, false, fmt.Errorf("filtro: %w", err)
		}
		if !keep {
			return nil, false, nil
		}
	}

	if len(p.columns) == 0 {
		return record, true, nil
	}

	out := make(records.Record, len(p.columns))
	for _, c := range p.columns {
		val, err := evalValue(c.prg, ctx)
		if err != nil {
			return nil, false, fmt.Errorf("coluna '%s': %w", c.name, err)
		}
		out[c.name] = val
	}
	return out, true, nil
}
