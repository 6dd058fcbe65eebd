package transport

import (
	"context"

	"github.com/raywall/fast-fetch-toolkit/pkg/event"
	"github.com/raywall/fast-fetch-toolkit/pkg/pipeline"
)

// Runner é o que os transportes precisam do pipeline (*pipeline.Runner).
type Runner interface {
	Run(ctx context.Context, raw []byte) (*pipeline.Report, error)
	Validate(raw []byte) (event.Batch, error)
}
