// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package pipeline liga validação, execução, extração e persistência numa
// única execução de job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raywall/fast-fetch-toolkit/api"
	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/raywall/fast-fetch-toolkit/pkg/event"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/raywall/fast-fetch-toolkit/pkg/metrics"
	"github.com/raywall/fast-fetch-toolkit/pkg/records"
	"github.com/raywall/fast-fetch-toolkit/pkg/rules"
	"github.com/raywall/fast-fetch-toolkit/pkg/sink"
	"github.com/rs/zerolog"
)

var (
	ErrMissingURL  = errors.New("api sem url")
	ErrSinkFailure = errors.New("sink failure")
)

// Options reúne as dependências de um Runner.
type Options struct {
	JobName   string
	Validator *event.Validator
	Caller    api.Caller
	Sink      sink.Sink
	Projector *rules.Projector
	Output    config.OutputConf
	Workers   int
	Paging    *config.PagingConf
	Logger    zerolog.Logger
	Metrics   metrics.Provider
}

// Runner executa um payload de ponta a ponta.
type Runner struct {
	opts Options
}

func New(opts Options) *Runner {
	return &Runner{opts: opts}
}

// TaskFailure descreve uma tarefa que falhou, para o relatório.
type TaskFailure struct {
	Task  string `json:"task"`
	Error string `json:"error"`
}

// Report resume uma execução.
type Report struct {
	RunID     string        `json:"run_id"`
	APIName   string        `json:"api_name"`
	URL       string        `json:"url"`
	Tasks     int           `json:"tasks"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Records   int           `json:"records"`
	Failures  []TaskFailure `json:"failures,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// Validate só confere o payload, sem tocar na rede.
func (r *Runner) Validate(raw []byte) (event.Batch, error) {
	return r.opts.Validator.ValidateBatch(raw)
}

// Run valida o payload, executa as tarefas, extrai os registros e grava nos sinks.
// Falha de validação aborta antes de qualquer chamada. Falhas de tarefas ficam
// no relatório e não abortam a execução.
func (r *Runner) Run(ctx context.Context, raw []byte) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	base := logger.FromContext(ctx, r.opts.Logger)
	runLog := base.With().Str("run_id", report.RunID).Logger()

	batch, err := r.Validate(raw)
	if err != nil {
		runLog.Error().Err(err).Msg("payload rejeitado")
		return nil, err
	}
	report.APIName = batch.APIName
	report.URL = batch.URL
	runLog = runLog.With().Str("api_name", batch.APIName).Logger()

	if batch.URL == "" {
		err := fmt.Errorf("%w: '%s'", ErrMissingURL, batch.APIName)
		runLog.Error().Err(err).Msg("payload rejeitado")
		return nil, err
	}

	tags := metrics.Tags(map[string]string{"job": r.opts.JobName, "api": batch.APIName})
	exec := api.NewExecutor(r.opts.Caller, api.ExecutorConfig{
		URL:     batch.URL,
		Workers: r.opts.Workers,
		Logger:  runLog,
		Metrics: r.opts.Metrics,
		Tags:    tags,
	})

	results := r.execute(ctx, exec, batch.Tasks)
	report.Tasks = len(results)

	for _, f := range results.Failed() {
		report.Failures = append(report.Failures, TaskFailure{Task: f.Task.Key(), Error: f.Err.Error()})
	}
	report.Failed = len(report.Failures)
	report.Succeeded = report.Tasks - report.Failed

	recs := r.collect(runLog, results)
	report.Records = len(recs)

	if len(recs) > 0 && r.opts.Sink != nil {
		if err := r.opts.Sink.Write(ctx, recs); err != nil {
			r.emit(runLog, func(p metrics.Provider) error { return p.Count(metrics.SinkFailures, 1, tags) })
			report.Duration = time.Since(start)
			runLog.Error().Err(err).Msg("falha ao gravar registros")
			return report, fmt.Errorf("%w: %w", ErrSinkFailure, err)
		}
		r.emit(runLog, func(p metrics.Provider) error {
			return p.Count(metrics.RecordsWritten, float64(len(recs)), tags)
		})
	} else if len(recs) == 0 {
		runLog.Warn().Msg("nenhum registro para gravar")
	}

	report.Duration = time.Since(start)
	runLog.Info().
		Int("tasks", report.Tasks).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("records", report.Records).
		Dur("duration", report.Duration).
		Msg("execução concluída")

	return report, nil
}

func (r *Runner) execute(ctx context.Context, exec *api.Executor, tasks []api.Task) api.Results {
	if r.opts.Paging == nil || len(tasks) == 0 {
		return exec.Execute(ctx, tasks)
	}

	page := api.PageConfig{
		StartParam: r.opts.Paging.StartParam,
		SizeParam:  r.opts.Paging.SizeParam,
		PageSize:   r.opts.Paging.PageSize,
		TotalPath:  r.opts.Paging.TotalPath,
		MaxPages:   r.opts.Paging.MaxPages,
	}
	return exec.ExecutePagedBatch(ctx, tasks, page)
}

// collect transforma os corpos de sucesso em registros, em ordem estável de tarefa.
func (r *Runner) collect(logger zerolog.Logger, results api.Results) []sink.Record {
	var out []sink.Record

	for _, res := range results.Succeeded() {
		extracted, err := records.Extract(res.Body, r.opts.Output.RecordsPath)
		if err != nil {
			logger.Warn().Err(err).Str("task", res.Task.Key()).Msg("registros não encontrados na resposta")
			continue
		}

		for _, rec := range extracted {
			if r.opts.Output.Flatten {
				rec = records.Flatten(rec, r.opts.Output.Separator)
			}

			projected, keep, err := r.opts.Projector.Apply(rec, res.Task)
			if err != nil {
				logger.Warn().Err(err).Str("task", res.Task.Key()).Msg("falha na projeção do registro")
				continue
			}
			if keep {
				out = append(out, projected)
			}
		}
	}
	return out
}

func (r *Runner) emit(logger zerolog.Logger, fn func(metrics.Provider) error) {
	if r.opts.Metrics == nil {
		return
	}
	if err := fn(r.opts.Metrics); err != nil {
		logger.Warn().Err(err).Msg("falha ao enviar métrica")
	}
}

// Close libera os sinks.
func (r *Runner) Close() error {
	if r.opts.Sink == nil {
		return nil
	}
	return r.opts.Sink.Close()
}
