package recorder

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"FundLens/internal/logger"
	"FundLens/internal/model"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect captures the differences between the supported databases.
type Dialect struct {
	Name       string
	driver     string
	idColumn   string
	positional bool // $1, $2 placeholders instead of ?
}

var (
	SQLite   = Dialect{Name: "sqlite", driver: "sqlite", idColumn: "INTEGER PRIMARY KEY AUTOINCREMENT"}
	Postgres = Dialect{Name: "postgres", driver: "postgres", idColumn: "BIGSERIAL PRIMARY KEY", positional: true}
)

// rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLRecorder persists history to SQLite or PostgreSQL.
type SQLRecorder struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLRecorder, error) {
	db, err := sql.Open(SQLite.driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r, err := open(db, SQLite)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

// NewPostgresRecorder connects to PostgreSQL and runs migrations.
func NewPostgresRecorder(dsn string) (*SQLRecorder, error) {
	db, err := sql.Open(Postgres.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r, err := open(db, Postgres)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("postgres recorder opened")
	return r, nil
}

func open(db *sql.DB, d Dialect) (*SQLRecorder, error) {
	r := newSQLRecorder(db, d)
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func newSQLRecorder(db *sql.DB, d Dialect) *SQLRecorder {
	return &SQLRecorder{db: db, dialect: d}
}

func (r *SQLRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id          ` + r.dialect.idColumn + `,
			timestamp   BIGINT NOT NULL,
			albo        TEXT,
			name        TEXT,
			url         TEXT,
			fund_type   TEXT,
			outcome     TEXT,
			chart_path  TEXT,
			error       TEXT,
			duration_ms BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(timestamp)`,

		`CREATE TABLE IF NOT EXISTS catalog_fetches (
			id          ` + r.dialect.idColumn + `,
			timestamp   BIGINT NOT NULL,
			source      TEXT,
			fund_count  INTEGER,
			error       TEXT,
			duration_ms BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_ts ON catalog_fetches(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLRecorder) RecordAnalysis(evt *AnalysisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(r.dialect.rebind(`INSERT INTO analyses
		(timestamp, albo, name, url, fund_type, outcome, chart_path, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`),
		time.Now().Unix(), evt.Albo, evt.Name, evt.URL, evt.FundType,
		evt.Outcome, evt.ChartPath, evt.Error, evt.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLRecorder) RecordCatalog(evt *CatalogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(r.dialect.rebind(`INSERT INTO catalog_fetches
		(timestamp, source, fund_count, error, duration_ms)
		VALUES (?,?,?,?,?)`),
		time.Now().Unix(), evt.Source, evt.FundCount, evt.Error, evt.Duration.Milliseconds(),
	)
	return err
}

// Stats aggregates the history recorded at or after since.
func (r *SQLRecorder) Stats(since time.Time) (*Stats, error) {
	ts := since.Unix()
	st := &Stats{Since: since}

	rows, err := r.db.Query(r.dialect.rebind(
		`SELECT outcome, COUNT(*) FROM analyses WHERE timestamp >= ? GROUP BY outcome`), ts)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		st.Analyses += n
		switch outcome {
		case model.OutcomeChart:
			st.Charts = n
		case model.OutcomeNoChart:
			st.NoChart = n
		case model.OutcomeError:
			st.Errors = n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	if err := r.db.QueryRow(r.dialect.rebind(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN error <> '' THEN 1 ELSE 0 END), 0)
		FROM catalog_fetches WHERE timestamp >= ?`), ts,
	).Scan(&st.CatalogFetches, &st.CatalogErrors); err != nil {
		return nil, fmt.Errorf("query catalog fetches: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT fund_count FROM catalog_fetches WHERE error = '' ORDER BY timestamp DESC, id DESC LIMIT 1`,
	).Scan(&st.LastFundCount)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("query last fund count: %w", err)
	}

	top, err := r.db.Query(r.dialect.rebind(
		`SELECT albo, name, COUNT(*) AS n FROM analyses WHERE timestamp >= ?
		GROUP BY albo, name ORDER BY n DESC, name LIMIT 5`), ts)
	if err != nil {
		return nil, fmt.Errorf("query top funds: %w", err)
	}
	defer top.Close()
	for top.Next() {
		var fc FundCount
		if err := top.Scan(&fc.Albo, &fc.Name, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan top fund: %w", err)
		}
		st.TopFunds = append(st.TopFunds, fc)
	}
	return st, top.Err()
}

func (r *SQLRecorder) Close() error {
	logger.Log.Infof("closing %s recorder", r.dialect.Name)
	return r.db.Close()
}
