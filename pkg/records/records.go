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
// Package records transforma corpos de resposta em linhas planas para os sinks.
package records

import (
	"fmt"
	"sort"
)

// Record é uma linha pronta para ser persistida.
type Record = map[string]interface{}

// Extract localiza a lista de registros dentro de um corpo de resposta.
// Um objeto no caminho vira um único registro; escalares são embrulhados em {"value": x}.
// Corpo nil gera zero registros.
func Extract(body interface{}, path string) ([]Record, error) {
	if body == nil {
		return nil, nil
	}

	val, err := Lookup(body, path)
	if err != nil {
		return nil, err
	}

	switch v := val.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			out = append(out, toRecord(item))
		}
		return out, nil
	case map[string]interface{}:
		return []Record{v}, nil
	default:
		return []Record{{"value": v}}, nil
	}
}

func toRecord(item interface{}) Record {
	if m, ok := item.(map[string]interface{}); ok {
		return m
	}
	return Record{"value": item}
}

// Flatten achata objetos aninhados unindo as chaves com sep ("fields.status.name").
// Arrays são mantidos como valor.
func Flatten(record Record, sep string) Record {
	if sep == "" {
		sep = "."
	}
	out := make(Record, len(record))
	flattenInto(out, "", record, sep)
	return out
}

func flattenInto(out Record, prefix string, in map[string]interface{}, sep string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + sep + k
		}
		if nested, ok := v.(map[string]interface{}); ok && len(nested) > 0 {
			flattenInto(out, key, nested, sep)
			continue
		}
		out[key] = v
	}
}

// Columns devolve a união ordenada das chaves dos registros.
func Columns(recs []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range recs {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Stringify converte um valor de registro para texto (CSV, chaves de cache).
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case map[string]interface{}, []interface{}:
		b, err := marshalCompact(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return b
	default:
		return fmt.Sprintf("%v", val)
	}
}
