package sink

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/fast-fetch-toolkit/pkg/awsutil"
	"github.com/raywall/fast-fetch-toolkit/pkg/config"
)

// New cria o sink descrito na configuração.
func New(ctx context.Context, cfg config.SinkConf) (Sink, error) {
	switch cfg.Type {
	case "csv":
		return NewCSVWriter(cfg.Path, cfg.Fields), nil

	case "json":
		return NewJSONWriter(cfg.Path), nil

	case "yaml":
		return NewYAMLWriter(cfg.Path), nil

	case "s3":
		client, err := awsutil.NewS3Client(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		return NewS3Writer(client, cfg.Bucket, cfg.Key, cfg.Format, cfg.Fields), nil

	case "postgres":
		db, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresWriter(db, cfg.Table, cfg.KeyColumns, cfg.Fields, cfg.CreateTable), nil

	case "dynamodb":
		awsCfg, err := awsutil.GetAWSConfig(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		return NewDynamoWriter(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil

	case "redis":
		client := NewRedisClient(cfg.Addr, cfg.Password, cfg.DB)
		return NewRedisWriter(client, cfg.Prefix, cfg.KeyField, cfg.GetTTL()), nil
	}

	return nil, fmt.Errorf("tipo de sink desconhecido: %s", cfg.Type)
}

// NewAll cria todos os sinks configurados como um único Multi.
// Se algum falhar, os já criados são fechados.
func NewAll(ctx context.Context, cfgs []config.SinkConf) (Multi, error) {
	var out Multi
	for i, c := range cfgs {
		s, err := New(ctx, c)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("sink[%d] (%s): %w", i, c.Type, err)
		}
		out = append(out, s)
	}
	return out, nil
}
