package sink

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/raywall/fast-fetch-toolkit/pkg/records"
	"gopkg.in/yaml.v3"
)

// Formatos suportados pelos sinks de arquivo e object storage.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode serializa o lote inteiro no formato pedido e devolve o content type.
// Para CSV a primeira linha é o header.
func Encode(format string, fields []string, recs []Record) ([]byte, string, error) {
	switch format {
	case "", FormatCSV:
		cols := fields
		if len(cols) == 0 {
			cols = records.Columns(recs)
		}
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(cols); err != nil {
			return nil, "", err
		}
		if err := writeRows(w, cols, recs); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil

	case FormatJSON:
		b, err := encodeJSON(recs)
		return b, "application/json", err

	case FormatYAML:
		b, err := yaml.Marshal(records.Native(recs))
		return b, "application/yaml", err
	}

	return nil, "", fmt.Errorf("formato não suportado: %s", format)
}

func writeRows(w *csv.Writer, cols []string, recs []Record) error {
	row := make([]string, len(cols))
	for _, r := range recs {
		for i, c := range cols {
			row[i] = records.Stringify(r[c])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func encodeJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}
