package api

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/raywall/fast-fetch-toolkit/pkg/metrics"
	"github.com/rs/zerolog"
)

// ExecutorConfig define o endpoint e o limite de concorrência de um lote.
type ExecutorConfig struct {
	URL     string
	Workers int // <= 0 usa runtime.NumCPU()
	Logger  zerolog.Logger
	Metrics metrics.Provider
	Tags    []string
}

// Executor distribui tarefas independentes entre um pool limitado de workers.
type Executor struct {
	caller Caller
	cfg    ExecutorConfig
}

func NewExecutor(caller Caller, cfg ExecutorConfig) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Executor{caller: caller, cfg: cfg}
}

// Workers retorna o limite efetivo de concorrência.
func (e *Executor) Workers() int {
	return e.cfg.Workers
}

// Execute roda o lote inteiro e só retorna quando todas as tarefas terminaram.
// Cada tarefa contribui com exatamente uma entrada no resultado. Um lote vazio
// gera um único log de erro e um mapa vazio.
func (e *Executor) Execute(ctx context.Context, tasks []Task) Results {
	results := make(Results, len(tasks))
	if len(tasks) == 0 {
		e.cfg.Logger.Error().Err(ErrEmptyTaskBatch).Msg("nenhuma tarefa para executar")
		return results
	}

	e.emit(func(p metrics.Provider) error {
		return p.Gauge(metrics.BatchSize, float64(len(tasks)), e.cfg.Tags)
	})

	workers := e.cfg.Workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	queue := make(chan Task)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				res := e.run(ctx, task)
				key := task.Key()

				mu.Lock()
				if _, dup := results[key]; dup {
					e.cfg.Logger.Warn().Str("task", key).Msg("tarefa duplicada, mantendo o último resultado")
				}
				results[key] = res
				mu.Unlock()
			}
		}()
	}

	for _, t := range tasks {
		queue <- t
	}
	close(queue)
	wg.Wait()

	e.cfg.Logger.Debug().
		Int("tasks", len(tasks)).
		Int("workers", workers).
		Int("failed", len(results.Failed())).
		Msg("lote executado")

	return results
}

// run isola a tarefa: panics viram PanicError no resultado.
func (e *Executor) run(ctx context.Context, task Task) (res CallResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = CallResult{Task: task, Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
		if res.Err != nil {
			res.Body = nil
		}
		res.Task = task
		res.Duration = time.Since(start)
		e.record(res)
	}()

	return e.caller.Call(ctx, e.cfg.URL, task)
}

func (e *Executor) record(res CallResult) {
	key := res.Task.Key()
	ms := float64(res.Duration.Milliseconds())

	if res.OK() {
		e.cfg.Logger.Info().Str("task", key).Interface("result", res.Body).Msg("tarefa concluída")
		e.emit(func(p metrics.Provider) error {
			return p.Count(metrics.TasksSucceeded, 1, e.cfg.Tags)
		})
	} else {
		e.cfg.Logger.Error().Str("task", key).Err(res.Err).Msg("tarefa falhou")
		e.emit(func(p metrics.Provider) error {
			return p.Count(metrics.TasksFailed, 1, e.cfg.Tags)
		})
	}

	e.emit(func(p metrics.Provider) error {
		return p.Histogram(metrics.TaskDuration, ms, e.cfg.Tags)
	})
}

func (e *Executor) emit(fn func(metrics.Provider) error) {
	if e.cfg.Metrics == nil {
		return
	}
	if err := fn(e.cfg.Metrics); err != nil {
		e.cfg.Logger.Warn().Err(err).Msg("falha ao enviar métrica")
	}
}
