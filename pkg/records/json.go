package records

import (
	"bytes"
	"encoding/json"
)

// Decode lê JSON preservando números como json.Number.
func Decode(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func marshalCompact(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Native troca json.Number por int64/float64, recursivamente. Encoders que não
// conhecem json.Number (yaml, attributevalue, CEL) recebem tipos nativos.
func Native(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case []Record:
		out := make([]interface{}, len(val))
		for i, r := range val {
			out[i] = Native(r)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = Native(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Native(item)
		}
		return out
	default:
		return v
	}
}
