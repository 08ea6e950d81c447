package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/story"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no story has the requested id
var ErrNotFound = errors.New("story not found")

// Store persists story documents in SQLite
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath and creates the schema
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveStory inserts the story or replaces its stored document
func (s *Store) SaveStory(st domain.Story) error {
	doc, err := story.Marshal(st)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	_, err = s.db.Exec(`
		INSERT INTO stories (id, title, object_count, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			object_count = excluded.object_count,
			document = excluded.document,
			updated_at = excluded.updated_at
	`, st.ID.String(), st.Title, len(st.Objects), string(doc), now, now)
	if err != nil {
		return fmt.Errorf("save story: %w", err)
	}
	return nil
}

// GetStory loads and decodes a story document
func (s *Store) GetStory(id uuid.UUID) (*domain.Story, error) {
	var doc string
	err := s.db.QueryRow(
		"SELECT document FROM stories WHERE id = ?",
		id.String(),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get story: %w", err)
	}

	st, err := story.Unmarshal([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("get story %s: %w", id, err)
	}
	return &st, nil
}

// ListStories returns story summaries, most recently updated first
func (s *Store) ListStories(limit, offset int) ([]domain.StorySummary, error) {
	rows, err := s.db.Query(
		"SELECT id, title, object_count FROM stories ORDER BY updated_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	summaries := []domain.StorySummary{}
	for rows.Next() {
		var (
			sum domain.StorySummary
			id  string
		)
		if err := rows.Scan(&id, &sum.Title, &sum.ObjectCount); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}

	return summaries, nil
}

// DeleteStory removes a story
func (s *Store) DeleteStory(id uuid.UUID) error {
	res, err := s.db.Exec("DELETE FROM stories WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindStory resolves a full id or a unique id prefix, as printed by the CLI
func (s *Store) FindStory(ref string) (*domain.Story, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.GetStory(id)
	}

	ref = strings.ToLower(ref)
	if !isIDPrefix(ref) {
		return nil, ErrNotFound
	}
	rows, err := s.db.Query("SELECT id FROM stories WHERE id LIKE ? LIMIT 2", ref+"%")
	if err != nil {
		return nil, fmt.Errorf("find story: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find story: %w", err)
	}
	switch len(ids) {
	case 0:
		return nil, ErrNotFound
	case 1:
		id, err := uuid.Parse(ids[0])
		if err != nil {
			return nil, fmt.Errorf("find story: %w", err)
		}
		return s.GetStory(id)
	default:
		return nil, fmt.Errorf("find story: prefix %q is ambiguous", ref)
	}
}

// isIDPrefix reports whether ref is a non-empty prefix of a textual uuid
func isIDPrefix(ref string) bool {
	if ref == "" || len(ref) > 36 {
		return false
	}
	for _, c := range ref {
		if !strings.ContainsRune("0123456789abcdef-", c) {
			return false
		}
	}
	return true
}
