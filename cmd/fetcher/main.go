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
// Command fetcher executa jobs de extração de APIs autenticadas.
//
// Uso:
//
//	fetcher run      -config job.yaml -event payload.json   (uma execução, relatório no stdout)
//	fetcher validate -config job.yaml [-event payload.json] (só valida)
//	fetcher serve    -config job.yaml                       (HTTP: POST /runs)
//	fetcher consume  -config job.yaml                       (consome a fila SQS do job)
//	fetcher lambda   -config job.yaml                       (handler AWS Lambda)
//
// Sem subcomando o runtime do YAML decide (RUNTIME sobrescreve).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/raywall/fast-fetch-toolkit/envloader"
	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/raywall/fast-fetch-toolkit/pkg/event"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/raywall/fast-fetch-toolkit/pkg/observability"
	"github.com/raywall/fast-fetch-toolkit/pkg/pipeline"
	"github.com/raywall/fast-fetch-toolkit/pkg/transport"
	"github.com/rs/zerolog/log"
)

// Env são as configurações de processo.
type Env struct {
	ConfigPath string `env:"CONFIG_FILE_PATH"`
	EventPath  string `env:"EVENT_FILE_PATH"`
	Runtime    string `env:"RUNTIME"`
	Region     string `env:"AWS_REGION" envDefault:"us-east-1"`
	Port       int    `env:"PORT"`
	QueueURL   string `env:"QUEUE_URL"`
}

var errMissingConfig = errors.New("caminho da configuração não informado (-config ou CONFIG_FILE_PATH)")

var (
	// Variáveis injetáveis para mocking
	lambdaStarter = func(handler interface{}) { lambda.Start(handler) }
	serve         = transport.Serve
	newSQSClient  = func(ctx context.Context, region string) (transport.SQSClient, error) {
		return transport.NewSQSClient(ctx, region)
	}
	stdin  io.Reader = os.Stdin
	stderr io.Writer = os.Stderr
)

func main() {
	var env Env
	if err := envloader.Load(&env); err != nil {
		log.Fatal().Err(err).Msg("falha ao carregar variáveis de ambiente")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], env, os.Stdout); err != nil {
		stop()
		log.Fatal().Err(err).Msg("fetcher falhou")
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, args []string, env Env, out io.Writer) error {
	cmd := ""
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("fetcher "+cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", env.ConfigPath, "YAML do job (arquivo, s3:// ou dynamodb://)")
	eventPath := fs.String("event", env.EventPath, "payload do evento (arquivo, s3:// ou - para stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return errMissingConfig
	}

	loader := config.NewLoader()
	cfg, err := loader.Load(ctx, *configPath)
	if err != nil {
		return err
	}

	if cmd == "" {
		if cmd, err = commandFor(cfg.Job.Runtime, env.Runtime); err != nil {
			return err
		}
	}

	// run e validate escrevem JSON no stdout; os logs vão para o stderr
	if cmd == "run" || cmd == "validate" {
		logger.Output = stderr
	}

	if cmd == "validate" {
		return validate(ctx, loader, cfg, *eventPath, out)
	}

	base := logger.Configure(cfg.Job.Logging).With().Str("job", cfg.Job.Name).Logger()

	provider, err := observability.SetupMetrics(cfg.Job.Metrics)
	if err != nil {
		return err
	}

	runner, err := pipeline.FromConfig(ctx, cfg, loader, base, provider)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			base.Warn().Err(err).Msg("falha ao fechar sinks")
		}
	}()

	switch cmd {
	case "run":
		return runOnce(ctx, loader, runner, cfg, *eventPath, out)

	case "serve":
		port := cfg.Job.Port
		if env.Port > 0 {
			port = env.Port
		}
		routerCfg := transport.RouterConfig{
			Timeout: cfg.Job.GetTimeout(),
			Logger:  logger.Component(base, "http"),
		}
		if prom, ok := observability.PrometheusOf(provider); ok {
			routerCfg.Metrics = prom.Handler()
		}
		srv := transport.NewServer(port, transport.NewRouter(runner, routerCfg), cfg.Job.GetTimeout())
		return serve(ctx, srv, base)

	case "consume":
		queue := cfg.Job.Queue
		if env.QueueURL != "" {
			queue = env.QueueURL
		}
		client, err := newSQSClient(ctx, env.Region)
		if err != nil {
			return fmt.Errorf("falha ao criar client SQS: %w", err)
		}
		transport.NewSQSConsumer(client, queue, runner, base).Start(ctx)
		return nil

	case "lambda":
		lambdaStarter(transport.NewLambdaHandler(runner, base).Handle)
		return nil
	}

	return fmt.Errorf("comando desconhecido: %s", cmd)
}

// commandFor escolhe o subcomando pelo runtime; override vem de RUNTIME.
func commandFor(runtime, override string) (string, error) {
	if override != "" {
		runtime = override
	}
	switch runtime {
	case config.RuntimeLocal:
		return "run", nil
	case config.RuntimeServer:
		return "serve", nil
	case config.RuntimeSQS:
		return "consume", nil
	case config.RuntimeLambda:
		return "lambda", nil
	}
	return "", fmt.Errorf("runtime desconhecido: %s", runtime)
}

func runOnce(ctx context.Context, loader *config.Loader, runner *pipeline.Runner, cfg *config.JobConfig, eventPath string, out io.Writer) error {
	raw, err := readEvent(ctx, loader, eventPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Job.GetTimeout())
	defer cancel()

	report, runErr := runner.Run(ctx, raw)
	if report != nil {
		if err := printJSON(out, report); err != nil {
			return err
		}
	}
	return runErr
}

func validate(ctx context.Context, loader *config.Loader, cfg *config.JobConfig, eventPath string, out io.Writer) error {
	spec, err := event.SpecFromConfig(ctx, loader, cfg.Validation)
	if err != nil {
		return err
	}

	result := map[string]interface{}{
		"job":  cfg.Job.Name,
		"apis": len(spec),
	}

	if eventPath != "" {
		raw, err := readEvent(ctx, loader, eventPath)
		if err != nil {
			return err
		}
		batch, err := event.NewValidator(spec).ValidateBatch(raw)
		if err != nil {
			return err
		}
		result["api_name"] = batch.APIName
		result["tasks"] = len(batch.Tasks)
	}

	return printJSON(out, result)
}

func readEvent(ctx context.Context, loader *config.Loader, path string) ([]byte, error) {
	switch path {
	case "":
		return nil, errors.New("evento não informado (-event ou EVENT_FILE_PATH)")
	case "-":
		return io.ReadAll(stdin)
	}
	return loader.Read(ctx, path)
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

