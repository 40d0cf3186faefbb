package words

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS words (
	id       BIGSERIAL PRIMARY KEY,
	word     TEXT NOT NULL,
	emoji    TEXT,
	category TEXT NOT NULL,
	UNIQUE (category, word)
);
CREATE INDEX IF NOT EXISTS words_category_idx ON words (category);`

// PostgresSource reads words from the `words` table.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens and pings the database at databaseURL.
func NewPostgresSource(databaseURL string) (*PostgresSource, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresSource{db: db}, nil
}

// EnsureSchema creates the words table if it is missing.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create words schema: %w", err)
	}
	return nil
}

// Categories lists categories with their word counts, sorted by name.
func (s *PostgresSource) Categories(ctx context.Context) ([]Category, error) {
	const query = `SELECT category, COUNT(id) FROM words GROUP BY category ORDER BY category`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Draw picks up to n distinct words from category.
func (s *PostgresSource) Draw(ctx context.Context, category string, n int) ([]Word, error) {
	if n <= 0 {
		return []Word{}, nil
	}
	const query = `SELECT word, emoji FROM words WHERE category = $1 ORDER BY RANDOM() LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, cleanCategory(category), n)
	if err != nil {
		return nil, fmt.Errorf("draw words: %w", err)
	}
	defer rows.Close()

	out := make([]Word, 0, n)
	for rows.Next() {
		var (
			w     Word
			emoji sql.NullString
		)
		if err := rows.Scan(&w.Text, &emoji); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		w.Emoji = emoji.String
		out = append(out, w)
	}
	return out, rows.Err()
}

// Seed replaces the stored categories present in c with c's words.
func (s *PostgresSource) Seed(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, name := range c.Names() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM words WHERE category = $1`, name); err != nil {
			return fmt.Errorf("clear category %s: %w", name, err)
		}
		for _, w := range c.Words(name) {
			var emoji sql.NullString
			if w.Emoji != "" {
				emoji = sql.NullString{String: w.Emoji, Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO words (word, emoji, category) VALUES ($1, $2, $3) ON CONFLICT (category, word) DO NOTHING`,
				w.Text, emoji, name,
			); err != nil {
				return fmt.Errorf("insert word %s: %w", w.Text, err)
			}
		}
	}
	return tx.Commit()
}

// Close closes the database handle.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
