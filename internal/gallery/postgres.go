package gallery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// OpenPostgres opens and verifies a PostgreSQL connection for use as a
// gallery source. The URL must point at a database with the pgvector
// extension installed.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// LoadPostgres reads a gallery from a table with (name text, embedding
// vector) columns. Rows are ordered by name so the resulting gallery is
// deterministic. Duplicate names keep the last row, mirroring Add.
func LoadPostgres(ctx context.Context, db *sql.DB, table string) (*Gallery, error) {
	query := fmt.Sprintf("SELECT name, embedding FROM %s ORDER BY name", pq.QuoteIdentifier(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query gallery table %s: %w", table, err)
	}
	defer rows.Close()

	g := New()
	for rows.Next() {
		var name string
		var vec pgvector.Vector
		if err := rows.Scan(&name, &vec); err != nil {
			return nil, fmt.Errorf("scan gallery row: %w", err)
		}
		if name == "" || len(vec.Slice()) == 0 {
			return nil, fmt.Errorf("%w: table %s contains an empty row", ErrMalformed, table)
		}
		g.Add(name, vec.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery rows: %w", err)
	}

	return g, nil
}
