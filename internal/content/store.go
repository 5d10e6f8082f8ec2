// Package content reads sources and their text chunks from the tables the
// ingestion service fills (pdf_embeddings, video_embeddings).
package content

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/KDigitalAi/Assessments/internal/models"
)

// Catalog is what the pipeline needs from the content store.
type Catalog interface {
	ListSources(ctx context.Context) ([]models.Source, error)
	GetChunks(ctx context.Context, sourceID string, limit int) ([]models.ContentChunk, error)
	GetSourceTitle(ctx context.Context, sourceID string) (string, error)
}

// Table describes one chunk table. Identifiers are fixed at construction
// time and never come from user input.
type Table struct {
	Kind        models.SourceKind
	Name        string
	IDColumn    string
	TitleColumn string
}

var DefaultTables = []Table{
	{Kind: models.SourceDocument, Name: "pdf_embeddings", IDColumn: "pdf_id", TitleColumn: "pdf_title"},
	{Kind: models.SourceVideo, Name: "video_embeddings", IDColumn: "video_id", TitleColumn: "video_title"},
}

type Store struct {
	db     *sql.DB
	tables []Table
}

func NewStore(db *sql.DB, tables ...Table) *Store {
	if len(tables) == 0 {
		tables = DefaultTables
	}
	return &Store{db: db, tables: tables}
}

// ListSources returns each distinct source once, in ingestion order per
// table. An id present in more than one table keeps its first listing.
func (s *Store) ListSources(ctx context.Context) ([]models.Source, error) {
	seen := make(map[string]bool)
	var sources []models.Source

	for _, t := range s.tables {
		query := fmt.Sprintf(`
			SELECT %[1]s, COALESCE(MAX(%[2]s), '')
			FROM %[3]s
			WHERE %[1]s IS NOT NULL AND %[1]s <> ''
			GROUP BY %[1]s
			ORDER BY MIN(id) ASC`, t.IDColumn, t.TitleColumn, t.Name)

		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s sources: %w", t.Kind, err)
		}
		for rows.Next() {
			var id, title string
			if err := rows.Scan(&id, &title); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s source: %w", t.Kind, err)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			name := title
			if name == "" {
				name = FallbackTitle(t.Kind, id)
			}
			sources = append(sources, models.Source{ID: id, DisplayName: name, Title: title, Kind: t.Kind})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s sources: %w", t.Kind, err)
		}
	}

	return sources, nil
}

// GetChunks returns the non-empty chunks of a source ordered by ingestion
// sequence. limit <= 0 returns every chunk.
func (s *Store) GetChunks(ctx context.Context, sourceID string, limit int) ([]models.ContentChunk, error) {
	for _, t := range s.tables {
		query := fmt.Sprintf(`
			SELECT id, content
			FROM %s
			WHERE %s = $1 AND content IS NOT NULL AND content <> ''
			ORDER BY id ASC`, t.Name, t.IDColumn)
		args := []any{sourceID}
		if limit > 0 {
			query += " LIMIT $2"
			args = append(args, limit)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query chunks for %s: %w", sourceID, err)
		}

		var chunks []models.ContentChunk
		for rows.Next() {
			c := models.ContentChunk{SourceID: sourceID}
			if err := rows.Scan(&c.Ordinal, &c.Text); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan chunk: %w", err)
			}
			chunks = append(chunks, c)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate chunks for %s: %w", sourceID, err)
		}

		if len(chunks) > 0 {
			return chunks, nil
		}
	}

	return nil, nil
}

// GetSourceTitle returns the stored title, or a "<Kind> <short id>" label
// when none was recorded.
func (s *Store) GetSourceTitle(ctx context.Context, sourceID string) (string, error) {
	kind := models.SourceDocument
	for _, t := range s.tables {
		query := fmt.Sprintf(`
			SELECT COALESCE(%[1]s, '')
			FROM %[2]s
			WHERE %[3]s = $1
			ORDER BY CASE WHEN %[1]s IS NULL OR %[1]s = '' THEN 1 ELSE 0 END, id ASC
			LIMIT 1`, t.TitleColumn, t.Name, t.IDColumn)

		var title string
		err := s.db.QueryRowContext(ctx, query, sourceID).Scan(&title)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read title for %s: %w", sourceID, err)
		}
		if title != "" {
			return title, nil
		}
		kind = t.Kind
		break
	}
	return FallbackTitle(kind, sourceID), nil
}

func FallbackTitle(kind models.SourceKind, sourceID string) string {
	label := "Document"
	if kind == models.SourceVideo {
		label = "Video"
	}
	short := []rune(sourceID)
	if len(short) > 8 {
		short = short[:8]
	}
	return label + " " + string(short)
}
