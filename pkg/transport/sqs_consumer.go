package transport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/raywall/fast-fetch-toolkit/pkg/awsutil"
	"github.com/raywall/fast-fetch-toolkit/pkg/logger"
	"github.com/rs/zerolog"
)

// SQSClient define a interface necessária para o consumer (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// NewSQSClient cria o client real usando a config AWS compartilhada.
func NewSQSClient(ctx context.Context, region string) (*sqs.Client, error) {
	cfg, err := awsutil.GetAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(cfg), nil
}

// SQSConsumer lê payloads de uma fila e executa cada um no Runner.
//
// A mensagem é apagada quando a execução termina ou quando o payload é
// rejeitado pela validação. Falhas de sink deixam a mensagem na fila e ela
// volta depois do visibility timeout.
type SQSConsumer struct {
	client   SQSClient
	queueURL string
	runner   Runner
	logger   zerolog.Logger

	MaxMessages int32
	WaitSeconds int32
	ErrorDelay  time.Duration
}

func NewSQSConsumer(client SQSClient, queueURL string, runner Runner, logger zerolog.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:      client,
		queueURL:    queueURL,
		runner:      runner,
		logger:      logger.With().Str("component", "sqs_consumer").Logger(),
		MaxMessages: 10,
		WaitSeconds: 20, // Long polling
		ErrorDelay:  5 * time.Second,
	}
}

// Start inicia o consumo (bloqueante) até ctx terminar.
func (s *SQSConsumer) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada. Consumer desativado.")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("Consumindo fila SQS")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Parando consumo SQS")
			return
		default:
		}

		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: s.MaxMessages,
			WaitTimeSeconds:     s.WaitSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Dur("delay", s.ErrorDelay).Msg("Erro no SQS, aguardando")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.ErrorDelay):
			}
			continue
		}

		for _, msg := range out.Messages {
			s.handle(ctx, msg)
		}
	}
}

func (s *SQSConsumer) handle(ctx context.Context, msg types.Message) {
	id := aws.ToString(msg.MessageId)
	msgLog := s.logger.With().Str("message_id", id).Logger()
	runCtx := logger.WithField(msgLog.WithContext(ctx), "message_id", id)

	report, err := s.runner.Run(runCtx, []byte(aws.ToString(msg.Body)))
	switch {
	case err == nil:
		msgLog.Info().Str("run_id", report.RunID).Int("records", report.Records).Msg("mensagem processada")
	case Rejected(err):
		msgLog.Error().Err(err).Msg("mensagem rejeitada, descartando")
	default:
		msgLog.Error().Err(err).Msg("falha na execução, mensagem volta para a fila")
		return
	}

	if _, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		msgLog.Error().Err(err).Msg("falha ao apagar mensagem")
	}
}
