package pipeline

import (
	"context"
	"fmt"

	"github.com/raywall/fast-fetch-toolkit/api"
	"github.com/raywall/fast-fetch-toolkit/pkg/auth"
	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/raywall/fast-fetch-toolkit/pkg/event"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/raywall/fast-fetch-toolkit/pkg/metrics"
	"github.com/raywall/fast-fetch-toolkit/pkg/rules"
	"github.com/raywall/fast-fetch-toolkit/pkg/sink"
	"github.com/rs/zerolog"
)

// FromConfig monta o Runner completo a partir do YAML do job.
func FromConfig(ctx context.Context, cfg *config.JobConfig, reader event.SourceReader, base zerolog.Logger, m metrics.Provider) (*Runner, error) {
	spec, err := event.SpecFromConfig(ctx, reader, cfg.Validation)
	if err != nil {
		return nil, err
	}

	source, err := auth.New(ctx, cfg.Credential)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar credencial: %w", err)
	}

	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, err
	}
	projector, err := rules.NewProjector(rm, cfg.Output.Filter, cfg.Output.Columns)
	if err != nil {
		return nil, err
	}

	sinks, err := sink.NewAll(ctx, sinkConfs(cfg.Output.Sinks, projector.Columns()))
	if err != nil {
		return nil, err
	}

	caller := api.NewHTTPCaller(source, cfg.Executor.GetTimeout(), logger.Component(base, "caller"))

	return New(Options{
		JobName:   cfg.Job.Name,
		Validator: event.NewValidator(spec),
		Caller:    caller,
		Sink:      sinks,
		Projector: projector,
		Output:    cfg.Output,
		Workers:   cfg.Executor.Workers,
		Paging:    cfg.Executor.Paging,
		Logger:    logger.Component(base, "pipeline"),
		Metrics:   m,
	}), nil
}

// sinkConfs usa as colunas projetadas como ordem padrão dos campos.
func sinkConfs(confs []config.SinkConf, columns []string) []config.SinkConf {
	out := make([]config.SinkConf, len(confs))
	for i, c := range confs {
		if len(c.Fields) == 0 && len(columns) > 0 {
			c.Fields = columns
		}
		out[i] = c
	}
	return out
}
