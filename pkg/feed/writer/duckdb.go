package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
)

// DuckDBWriter buffers bars in an in-memory DuckDB table and exports them as
// a Parquet file on Finalize.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	asset      string
	outputPath string
}

// NewDuckDBWriter creates a Parquet writer for the given asset.
func NewDuckDBWriter(outputPath, asset string) SeriesWriter {
	return &DuckDBWriter{
		asset:      asset,
		outputPath: outputPath,
	}
}

// Initialize opens the in-memory database, creates the staging table, and
// prepares the insert statement inside a transaction.
func (w *DuckDBWriter) Initialize() (err error) {
	if err := os.MkdirAll(filepath.Dir(w.outputPath), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "create output directory", err)
	}

	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS ohlcv (
			id TEXT,
			asset TEXT,
			time BIGINT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			vol DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO ohlcv (id, asset, time, open, high, low, close, vol)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "prepare statement", err)
	}

	return nil
}

// Write stages a single bar using the prepared statement within the transaction.
func (w *DuckDBWriter) Write(bar types.Ohlcv) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized or statement is nil")
	}

	_, err := w.stmt.Exec(
		uuid.New().String(),
		w.asset,
		int64(bar.Time),
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Vol,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "insert bar", err)
	}

	return nil
}

// Finalize commits the transaction and exports the staged bars to Parquet.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized or transaction is nil")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeWriteFailed, "commit transaction", err)
	}

	w.tx = nil

	_, err := w.db.Exec(fmt.Sprintf(`COPY ohlcv TO '%s' (FORMAT PARQUET)`, w.outputPath))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "export to Parquet", err)
	}

	return w.outputPath, nil
}

// Close cleans up the statement, any open transaction, and the connection.
func (w *DuckDBWriter) Close() error {
	var firstErr error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		w.stmt = nil
	}

	if w.tx != nil {
		_ = w.tx.Rollback()
		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		w.db = nil
	}

	return firstErr
}

// OutputPath returns the configured output file path.
func (w *DuckDBWriter) OutputPath() string {
	return w.outputPath
}
