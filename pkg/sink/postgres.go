package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/lib/pq"
	"github.com/raywall/fast-fetch-toolkit/pkg/records"
)

// PostgresWriter faz upsert idempotente (INSERT ... ON CONFLICT DO UPDATE)
// numa transação por escrita.
type PostgresWriter struct {
	db          *sql.DB
	table       string
	keyColumns  []string
	fields      []string
	createTable bool

	mu      sync.Mutex
	created bool
}

func NewPostgresWriter(db *sql.DB, table string, keyColumns, fields []string, createTable bool) *PostgresWriter {
	return &PostgresWriter{
		db:          db,
		table:       table,
		keyColumns:  keyColumns,
		fields:      fields,
		createTable: createTable,
	}
}

// OpenPostgres abre a conexão usando o driver lib/pq.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão SQL: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao conectar no postgres: %w", err)
	}
	return db, nil
}

func (w *PostgresWriter) Write(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	// uma escrita por vez: o Runner é compartilhado entre requisições no modo serve
	w.mu.Lock()
	defer w.mu.Unlock()

	cols := upsertColumns(w.fields, w.keyColumns, recs)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	if w.createTable && !w.created {
		if _, err := tx.ExecContext(ctx, createTableSQL(w.table, cols, w.keyColumns)); err != nil {
			return fmt.Errorf("erro ao criar tabela %s: %w", w.table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL(w.table, cols, w.keyColumns))
	if err != nil {
		return fmt.Errorf("erro ao preparar upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, sqlArgs(cols, r)...); err != nil {
			return fmt.Errorf("erro no upsert em %s: %w", w.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro no commit: %w", err)
	}
	w.created = true
	return nil
}

func (w *PostgresWriter) Close() error {
	return w.db.Close()
}

// upsertColumns garante que as chaves apareçam primeiro e sem duplicatas.
func upsertColumns(fields, keys []string, recs []Record) []string {
	base := fields
	if len(base) == 0 {
		base = records.Columns(recs)
	}

	seen := make(map[string]bool)
	cols := make([]string, 0, len(base)+len(keys))
	for _, c := range append(append([]string{}, keys...), base...) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	return cols
}

func quoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pq.QuoteIdentifier(c)
	}
	return out
}

func upsertSQL(table string, cols, keys []string) string {
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var updates []string
	for _, c := range cols {
		if !isKey[c] {
			q := pq.QuoteIdentifier(c)
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
		}
	}

	action := "DO NOTHING"
	if len(updates) > 0 {
		action = "DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		quoteTable(table),
		strings.Join(quoteAll(cols), ", "),
		strings.Join(placeholders, ", "),
		strings.Join(quoteAll(keys), ", "),
		action,
	)
}

func createTableSQL(table string, cols, keys []string) string {
	defs := make([]string, len(cols))
	for i, c := range quoteAll(cols) {
		defs[i] = c + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s, PRIMARY KEY (%s))",
		quoteTable(table),
		strings.Join(defs, ", "),
		strings.Join(quoteAll(keys), ", "),
	)
}

// quoteTable aceita "schema.tabela".
func quoteTable(table string) string {
	return strings.Join(quoteAll(strings.Split(table, ".")), ".")
}

func sqlArgs(cols []string, r Record) []interface{} {
	args := make([]interface{}, len(cols))
	for i, c := range cols {
		switch v := r[c].(type) {
		case nil:
			args[i] = nil
		case json.Number:
			args[i] = v.String()
		case map[string]interface{}, []interface{}:
			args[i] = records.Stringify(v)
		case []string:
			args[i] = pq.Array(v)
		default:
			args[i] = v
		}
	}
	return args
}
