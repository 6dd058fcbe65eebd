package transport

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/rs/zerolog"
)

const sqsEventSource = "aws:sqs"

// LambdaHandler aceita dois formatos de invocação: o payload do job direto
// (invocação síncrona ou EventBridge) e eventos SQS.
type LambdaHandler struct {
	runner Runner
	logger zerolog.Logger
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(runner Runner, logger zerolog.Logger) *LambdaHandler {
	return &LambdaHandler{runner: runner, logger: logger.With().Str("component", "lambda").Logger()}
}

// Handle é registrado em lambda.Start.
func (h *LambdaHandler) Handle(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	if evt, ok := asSQSEvent(raw); ok {
		return h.HandleSQS(ctx, evt)
	}

	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ctx = logger.WithField(ctx, "request_id", lc.AwsRequestID)
	}

	report, err := h.runner.Run(h.logger.WithContext(ctx), raw)
	if err != nil {
		h.logger.Error().Err(err).Msg("execução falhou")
		return report, err
	}
	return report, nil
}

// HandleSQS executa cada mensagem e devolve as que devem voltar para a fila
// (ReportBatchItemFailures). Payloads rejeitados não voltam.
func (h *LambdaHandler) HandleSQS(ctx context.Context, evt events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse

	for _, msg := range evt.Records {
		msgLog := h.logger.With().Str("message_id", msg.MessageId).Logger()
		runCtx := logger.WithField(msgLog.WithContext(ctx), "message_id", msg.MessageId)

		report, err := h.runner.Run(runCtx, []byte(msg.Body))
		switch {
		case err == nil:
			msgLog.Info().Str("run_id", report.RunID).Int("records", report.Records).Msg("mensagem processada")
		case Rejected(err):
			msgLog.Error().Err(err).Msg("mensagem rejeitada, descartando")
		default:
			msgLog.Error().Err(err).Msg("falha na execução")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: msg.MessageId,
			})
		}
	}

	return resp, nil
}

func asSQSEvent(raw json.RawMessage) (events.SQSEvent, bool) {
	var envelope struct {
		Records []struct {
			EventSource string `json:"eventSource"`
		} `json:"Records"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Records) == 0 {
		return events.SQSEvent{}, false
	}
	for _, r := range envelope.Records {
		if r.EventSource != sqsEventSource {
			return events.SQSEvent{}, false
		}
	}

	var evt events.SQSEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return events.SQSEvent{}, false
	}
	return evt, true
}
