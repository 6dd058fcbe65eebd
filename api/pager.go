package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/raywall/fast-fetch-toolkit/pkg/records"
)

// DefaultMaxPages limita quantas páginas um único total pode gerar.
const DefaultMaxPages = 1000

// ErrInvalidTotal indica um total de paginação negativo ou que passaria do limite de páginas.
var ErrInvalidTotal = errors.New("total de paginação inválido")

// PageConfig descreve paginação por offset no estilo startAt/maxResults/total.
type PageConfig struct {
	StartParam string
	SizeParam  string
	PageSize   int
	TotalPath  string
	MaxPages   int // 0 = DefaultMaxPages
}

func (c PageConfig) withDefaults() PageConfig {
	if c.StartParam == "" {
		c.StartParam = "startAt"
	}
	if c.SizeParam == "" {
		c.SizeParam = "maxResults"
	}
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.TotalPath == "" {
		c.TotalPath = "total"
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	return c
}

// PageCount devolve ceil(total/PageSize), no mínimo 1. Total negativo ou acima
// de MaxPages páginas é erro.
func PageCount(cfg PageConfig, total int) (int, error) {
	cfg = cfg.withDefaults()
	if total < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTotal, total)
	}

	// divisão antes da soma, sem overflow perto de MaxInt
	pages := total / cfg.PageSize
	if total%cfg.PageSize != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	if pages > cfg.MaxPages {
		return 0, fmt.Errorf("%w: %d gera %d páginas, limite %d", ErrInvalidTotal, total, pages, cfg.MaxPages)
	}
	return pages, nil
}

// PageTasks gera uma tarefa por página cobrindo [0, total). A primeira página
// sempre existe, mesmo com total zero.
func PageTasks(base Task, cfg PageConfig, total int) ([]Task, error) {
	cfg = cfg.withDefaults()

	pages, err := PageCount(cfg, total)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, pages)
	for i := 0; i < pages; i++ {
		t := base.Clone()
		t[cfg.StartParam] = i * cfg.PageSize
		t[cfg.SizeParam] = cfg.PageSize
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// ExecutePaged busca a primeira página, lê o total e distribui as páginas
// restantes pelo pool. Se a primeira página falhar ou não tiver total, o
// resultado contém apenas ela.
func (e *Executor) ExecutePaged(ctx context.Context, base Task, cfg PageConfig) Results {
	return e.ExecutePagedBatch(ctx, []Task{base}, cfg)
}

// ExecutePagedBatch busca as primeiras páginas de todas as tarefas base num
// único lote e depois distribui as páginas restantes de todas elas em outro.
func (e *Executor) ExecutePagedBatch(ctx context.Context, bases []Task, cfg PageConfig) Results {
	cfg = cfg.withDefaults()

	firsts := make([]Task, 0, len(bases))
	for _, base := range bases {
		first := base.Clone()
		first[cfg.StartParam] = 0
		first[cfg.SizeParam] = cfg.PageSize
		firsts = append(firsts, first)
	}

	results := e.Execute(ctx, firsts)

	var rest []Task
	seen := make(map[string]bool, len(firsts))
	for i, first := range firsts {
		key := first.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		res, ok := results[key]
		if !ok || !res.OK() {
			continue
		}

		total, err := records.LookupInt(res.Body, cfg.TotalPath)
		if err != nil {
			e.cfg.Logger.Warn().Err(err).Str("task", key).Msg("total não encontrado, paginação interrompida")
			continue
		}

		pages, err := PageTasks(bases[i], cfg, total)
		if err != nil {
			e.cfg.Logger.Warn().Err(err).Str("task", key).Msg("total rejeitado, paginação interrompida")
			continue
		}
		rest = append(rest, pages[1:]...)
	}

	if len(rest) == 0 {
		return results
	}

	for k, v := range e.Execute(ctx, rest) {
		results[k] = v
	}
	return results
}
