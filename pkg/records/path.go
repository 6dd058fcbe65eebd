package records

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Lookup navega em uma estrutura JSON decodificada usando um caminho simples.
// Exemplos de caminhos válidos:
//   - "issues" -> campo direto
//   - "data.items" -> objetos aninhados
//   - "data[0].items" -> elemento de array
//   - "" -> a própria estrutura
func Lookup(data interface{}, path string) (interface{}, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return data, nil
	}

	parts := parsePath(path)
	current := data

	for i, part := range parts {
		if part.isArray {
			arr, ok := current.([]interface{})
			if !ok {
				return nil, fmt.Errorf("esperado array no caminho '%s', mas encontrou %T", pathUntil(parts, i), current)
			}
			if part.index < 0 || part.index >= len(arr) {
				return nil, fmt.Errorf("índice %d fora do intervalo no caminho '%s'", part.index, pathUntil(parts, i+1))
			}
			current = arr[part.index]
			continue
		}

		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("esperado objeto no caminho '%s', mas encontrou %T", pathUntil(parts, i), current)
		}
		val, exists := m[part.field]
		if !exists {
			return nil, fmt.Errorf("campo '%s' não encontrado no caminho '%s'", part.field, pathUntil(parts, i+1))
		}
		current = val
	}

	return current, nil
}

// LookupInt extrai um valor numérico, aceitando json.Number e strings.
func LookupInt(data interface{}, path string) (int, error) {
	val, err := Lookup(data, path)
	if err != nil {
		return 0, err
	}

	switch v := val.(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, err
			}
			return floatToInt(f)
		}
		if i > math.MaxInt || i < math.MinInt {
			return 0, fmt.Errorf("valor %d fora do intervalo de int", i)
		}
		return int(i), nil
	case float64:
		return floatToInt(v)
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("não foi possível converter %T para int", val)
	}
}

type pathPart struct {
	field   string
	isArray bool
	index   int
}

func parsePath(path string) []pathPart {
	var parts []pathPart

	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			continue
		}

		open := strings.Index(segment, "[")
		if open == -1 {
			parts = append(parts, pathPart{field: segment})
			continue
		}

		end := strings.Index(segment, "]")
		if end == -1 || end < open {
			// Bracket não fechado, trata como campo normal
			parts = append(parts, pathPart{field: segment})
			continue
		}

		if name := segment[:open]; name != "" {
			parts = append(parts, pathPart{field: name})
		}

		index, err := strconv.Atoi(segment[open+1 : end])
		if err == nil {
			parts = append(parts, pathPart{isArray: true, index: index})
		}

		if rest := segment[end+1:]; rest != "" {
			parts = append(parts, parsePath(rest)...)
		}
	}

	return parts
}

// pathUntil reconstrói o caminho até um índice (para mensagens de erro)
func pathUntil(parts []pathPart, until int) string {
	var b strings.Builder
	for i := 0; i < until && i < len(parts); i++ {
		if parts[i].isArray {
			fmt.Fprintf(&b, "[%d]", parts[i].index)
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(parts[i].field)
	}
	return b.String()
}

// floatToInt trunca f, rejeitando NaN, infinito e valores fora do intervalo de int.
func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, fmt.Errorf("valor %v fora do intervalo de int", f)
	}
	return int(f), nil
}
