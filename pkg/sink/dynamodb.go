package sink

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/fast-fetch-toolkit/pkg/records"
)

const (
	// Limite do BatchWriteItem por requisição.
	dynamoBatchSize = 25
	// Quantas vezes itens não processados são reenviados.
	dynamoMaxResubmits = 5
)

// DynamoBatchWriter abstrai o client do DynamoDB (permite mocking).
type DynamoBatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoWriter grava cada registro como um item (PutRequest, upsert pela chave da tabela).
type DynamoWriter struct {
	client DynamoBatchWriter
	table  string
}

func NewDynamoWriter(client DynamoBatchWriter, table string) *DynamoWriter {
	return &DynamoWriter{client: client, table: table}
}

func (w *DynamoWriter) Write(ctx context.Context, recs []Record) error {
	for start := 0; start < len(recs); start += dynamoBatchSize {
		end := start + dynamoBatchSize
		if end > len(recs) {
			end = len(recs)
		}

		reqs := make([]types.WriteRequest, 0, end-start)
		for _, r := range recs[start:end] {
			av, err := attributevalue.MarshalMap(records.Native(r))
			if err != nil {
				return fmt.Errorf("dynamodb: marshal failed: %w", err)
			}
			reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
		}

		if err := w.flush(ctx, reqs); err != nil {
			return err
		}
	}
	return nil
}

func (w *DynamoWriter) flush(ctx context.Context, reqs []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{w.table: reqs}

	for attempt := 0; attempt <= dynamoMaxResubmits; attempt++ {
		out, err := w.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return fmt.Errorf("dynamodb: batch write failed: %w", err)
		}
		if len(out.UnprocessedItems[w.table]) == 0 {
			return nil
		}
		pending = out.UnprocessedItems
	}

	return fmt.Errorf("dynamodb: %d itens não processados em %s", len(pending[w.table]), w.table)
}

func (w *DynamoWriter) Close() error { return nil }
