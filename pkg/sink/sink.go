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
// Package sink persiste os registros coletados em arquivos, object storage,
// bancos relacionais, DynamoDB ou Redis.
package sink

import (
	"context"
	"errors"

	"github.com/raywall/fast-fetch-toolkit/pkg/records"
)

// Record é uma linha de saída.
type Record = records.Record

// Sink é um destino de registros. A semântica de Write (append ou replace)
// depende da implementação.
type Sink interface {
	Write(ctx context.Context, recs []Record) error
	Close() error
}

// Multi replica cada escrita para todos os sinks.
type Multi []Sink

func (m Multi) Write(ctx context.Context, recs []Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, recs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
