package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/lexicon"
)

// dialect holds the statements that differ between SQL engines
type dialect struct {
	name       string
	schema     []string
	insertTerm string
}

// SQLStore keeps the lexicon, the training corpus and the spam log in a SQL
// database. The unique constraint on terms makes additions safe across
// processes.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

type sampleRow struct {
	Text  string `db:"text"`
	Label string `db:"label"`
}

type logRow struct {
	LoggedAt string `db:"logged_at"`
	Text     string `db:"text"`
}

func newSQLStore(db *sqlx.DB, d dialect, logger *zap.Logger) (*SQLStore, error) {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
		}
	}
	return &SQLStore{
		db:      db,
		dialect: d,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Terms returns the stored terms in insertion order
func (s *SQLStore) Terms(ctx context.Context) ([]string, error) {
	terms := []string{}
	if err := s.db.SelectContext(ctx, &terms, `SELECT term FROM lexicon_terms ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to query lexicon: %w", err)
	}
	return terms, nil
}

// Add inserts term if it is new
func (s *SQLStore) Add(ctx context.Context, term string) (bool, error) {
	term, ok := lexicon.NormalizeTerm(term)
	if !ok {
		return false, nil
	}

	res, err := s.db.ExecContext(ctx, s.dialect.insertTerm, term)
	if err != nil {
		return false, fmt.Errorf("failed to insert lexicon term: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// Append stores a training sample
func (s *SQLStore) Append(ctx context.Context, sample core.TrainingSample) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_samples (text, label) VALUES (?, ?)`,
		sample.Text, string(sample.Label))
	if err != nil {
		return fmt.Errorf("failed to insert training sample: %w", err)
	}
	return nil
}

// All returns the full corpus in insertion order
func (s *SQLStore) All(ctx context.Context) (*core.TrainingCorpus, error) {
	var rows []sampleRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT text, label FROM training_samples ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to query training samples: %w", err)
	}

	corpus := &core.TrainingCorpus{
		Samples: make([]string, 0, len(rows)),
		Labels:  make([]core.Label, 0, len(rows)),
	}
	for _, row := range rows {
		corpus.Samples = append(corpus.Samples, row.Text)
		corpus.Labels = append(corpus.Labels, core.Label(row.Label))
	}
	return corpus, nil
}

// Record appends a spam log entry
func (s *SQLStore) Record(ctx context.Context, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spam_log (logged_at, text) VALUES (?, ?)`,
		s.now().Format(TimestampLayout), text)
	if err != nil {
		return fmt.Errorf("failed to insert spam log entry: %w", err)
	}
	return nil
}

// Entries returns the spam log formatted as log lines
func (s *SQLStore) Entries(ctx context.Context) ([]string, error) {
	var rows []logRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT logged_at, text FROM spam_log ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to query spam log: %w", err)
	}

	entries := make([]string, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, fmt.Sprintf("[%s] %s\n", row.LoggedAt, row.Text))
	}
	return entries, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.String("dialect", s.dialect.name), zap.Error(err))
		return err
	}
	return nil
}
