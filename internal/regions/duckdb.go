package regions

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Store is a DuckDB-backed genomic-regions cache. It trades the linear scan
// of the text format for indexed per-transcript lookups, which matters when a
// job array runs one process per --id against a large annotation set.
type Store struct {
	db   *sql.DB
	path string
}

// IsStorePath reports whether path refers to a DuckDB regions store.
func IsStorePath(path string) bool {
	return strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db")
}

// OpenStore opens (or creates) a DuckDB regions store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates the tables for storing transcripts and their
// exon/coding intervals.
func (s *Store) CreateSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS transcripts (
			name VARCHAR PRIMARY KEY,
			chrom VARCHAR,
			strand TINYINT,
			span_start BIGINT,
			span_end BIGINT
		);

		CREATE TABLE IF NOT EXISTS intervals (
			transcript_name VARCHAR,
			kind VARCHAR, -- 'exon' or 'cds'
			ord INTEGER,
			start BIGINT,
			end_ BIGINT,
			phase TINYINT,
			PRIMARY KEY (transcript_name, kind, ord)
		);

		CREATE INDEX IF NOT EXISTS idx_transcripts_pos ON transcripts(chrom, span_start, span_end);
		CREATE INDEX IF NOT EXISTS idx_intervals_transcript ON intervals(transcript_name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Insert stores a transcript and its intervals.
func (s *Store) Insert(t *Transcript) error {
	_, err := s.db.Exec(`
		INSERT INTO transcripts (name, chrom, strand, span_start, span_end)
		VALUES (?, ?, ?, ?, ?)
	`, t.Name, t.Chrom, t.Strand, t.Span.Start, t.Span.End)
	if err != nil {
		return fmt.Errorf("insert transcript %s: %w", t.Name, err)
	}

	for i, e := range t.Exons {
		_, err := s.db.Exec(`
			INSERT INTO intervals (transcript_name, kind, ord, start, end_, phase)
			VALUES (?, 'exon', ?, ?, ?, NULL)
		`, t.Name, i, e.Start, e.End)
		if err != nil {
			return fmt.Errorf("insert exon %d of %s: %w", i, t.Name, err)
		}
	}
	for i, c := range t.CDS {
		_, err := s.db.Exec(`
			INSERT INTO intervals (transcript_name, kind, ord, start, end_, phase)
			VALUES (?, 'cds', ?, ?, ?, ?)
		`, t.Name, i, c.Start, c.End, c.Phase)
		if err != nil {
			return fmt.Errorf("insert coding interval %d of %s: %w", i, t.Name, err)
		}
	}
	return nil
}

// Load returns the stored transcripts. When filterID is non-empty, the filter
// is pushed into the query so only that transcript is materialized.
func (s *Store) Load(filterID string) ([]*Transcript, error) {
	query := `
		SELECT name, chrom, strand, span_start, span_end
		FROM transcripts
	`
	var args []any
	if filterID != "" {
		query += " WHERE name = ?"
		args = append(args, filterID)
	}
	query += " ORDER BY chrom, span_start"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*Transcript
	for rows.Next() {
		t := &Transcript{}
		var start, end int64
		if err := rows.Scan(&t.Name, &t.Chrom, &t.Strand, &start, &end); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		t.Span = Interval{Start: int(start), End: int(end)}
		transcripts = append(transcripts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range transcripts {
		if err := s.loadIntervals(t); err != nil {
			return nil, err
		}
	}
	return transcripts, nil
}

// Count returns the number of stored transcripts.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&count)
	return count, err
}

func (s *Store) loadIntervals(t *Transcript) error {
	rows, err := s.db.Query(`
		SELECT kind, start, end_, phase
		FROM intervals
		WHERE transcript_name = ?
		ORDER BY kind, ord
	`, t.Name)
	if err != nil {
		return fmt.Errorf("query intervals for %s: %w", t.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var start, end int64
		var phase sql.NullInt64
		if err := rows.Scan(&kind, &start, &end, &phase); err != nil {
			return fmt.Errorf("scan interval: %w", err)
		}
		iv := Interval{Start: int(start), End: int(end)}
		switch kind {
		case "exon":
			t.Exons = append(t.Exons, iv)
		case "cds":
			t.CDS = append(t.CDS, CDSRegion{Interval: iv, Phase: int(phase.Int64)})
		default:
			return fmt.Errorf("unknown interval kind %q for %s", kind, t.Name)
		}
	}
	return rows.Err()
}
