// Store aggregated scaling series in PostgreSQL (or TimescaleDB), so that runs from different
// machines and campaigns can be compared in one place.

package export

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	. "stdpbench/common"
	"stdpbench/runlog"
)

// Both *pgx.Conn and pgx.Tx implement this.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var tableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Exporter struct {
	table string
	now   func() time.Time
}

func NewExporter(table string) (*Exporter, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("Invalid table name %q", table)
	}
	return &Exporter{table: pgx.Identifier{table}.Sanitize(), now: time.Now}, nil
}

func (e *Exporter) createSQL() string {
	return "CREATE TABLE IF NOT EXISTS " + e.table + ` (
	label text NOT NULL,
	procs integer NOT NULL,
	setup_s double precision NOT NULL,
	sim_s double precision NOT NULL,
	mem double precision NOT NULL,
	files integer NOT NULL,
	recorded_at timestamptz NOT NULL
)`
}

func (e *Exporter) insertSQL() string {
	return "INSERT INTO " + e.table +
		" (label, procs, setup_s, sim_s, mem, files, recorded_at) VALUES ($1, $2, $3, $4, $5, $6, $7)"
}

// Create the table if necessary and insert one row per point of every series.  Returns the number
// of rows inserted.  All rows get the same timestamp.

func (e *Exporter) Write(ctx context.Context, db Execer, series ...runlog.Series) (int, error) {
	if _, err := db.Exec(ctx, e.createSQL()); err != nil {
		return 0, fmt.Errorf("Creating %s: %w", e.table, err)
	}
	stamp := e.now().UTC()
	rows := 0
	for _, s := range series {
		for i := range s.Procs {
			pt := s.Point(i)
			_, err := db.Exec(ctx, e.insertSQL(), s.Label, pt.Procs, pt.Setup, pt.Sim, pt.Mem, pt.Files, stamp)
			if err != nil {
				return rows, fmt.Errorf("Inserting %s/%d: %w", s.Label, pt.Procs, err)
			}
			rows++
		}
	}
	return rows, nil
}

// Connect, write everything in one transaction, and disconnect.
func Export(ctx context.Context, cfg *ExportConfig, series ...runlog.Series) (int, error) {
	e, err := NewExporter(cfg.Table)
	if err != nil {
		return 0, err
	}
	conn, err := pgx.Connect(ctx, cfg.DatabaseURI)
	if err != nil {
		return 0, fmt.Errorf("Unable to connect to database: %w", err)
	}
	defer conn.Close(context.Background())

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(context.Background())

	n, err := e.Write(ctx, tx, series...)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	Log.Infof("Exported %d rows to %s", n, cfg.Table)
	return n, nil
}
