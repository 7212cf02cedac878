package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"examples-db/internal/catalog"
)

const schema = `
	DROP TABLE IF EXISTS example_previews;
	DROP TABLE IF EXISTS example_tags;
	DROP TABLE IF EXISTS examples;
	DROP TABLE IF EXISTS tags;

	CREATE TABLE examples (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL,
		name TEXT NOT NULL,
		short_description TEXT NOT NULL,
		description TEXT NOT NULL,
		license TEXT NOT NULL,
		authors TEXT NOT NULL,
		project_file_url TEXT NOT NULL,
		gdevelop_version TEXT NOT NULL,
		instructions_count INTEGER NOT NULL
	);
	CREATE TABLE example_tags (
		example_id TEXT NOT NULL REFERENCES examples(id),
		position INTEGER NOT NULL,
		tag TEXT NOT NULL,
		PRIMARY KEY (example_id, position)
	);
	CREATE TABLE example_previews (
		example_id TEXT NOT NULL REFERENCES examples(id),
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (example_id, position)
	);
	CREATE TABLE tags (
		name TEXT PRIMARY KEY,
		is_default INTEGER NOT NULL
	);
	CREATE INDEX idx_example_tags_tag ON example_tags(tag);
`

// SQLite writes the catalog into the database at path. The tables are
// recreated on every call, inside one transaction.
func SQLite(ctx context.Context, path string, examples []*catalog.Example, filters *catalog.Filters) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := insertExamples(ctx, tx, examples); err != nil {
		return err
	}
	if err := insertTags(ctx, tx, filters); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func insertExamples(ctx context.Context, tx *sql.Tx, examples []*catalog.Example) error {
	exampleStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO examples (id, slug, name, short_description, description, license, authors,
			project_file_url, gdevelop_version, instructions_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare example statement: %w", err)
	}
	defer exampleStmt.Close()

	tagStmt, err := tx.PrepareContext(ctx, `INSERT INTO example_tags (example_id, position, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tag statement: %w", err)
	}
	defer tagStmt.Close()

	previewStmt, err := tx.PrepareContext(ctx, `INSERT INTO example_previews (example_id, position, url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare preview statement: %w", err)
	}
	defer previewStmt.Close()

	for _, e := range examples {
		if _, err := exampleStmt.ExecContext(ctx, e.ID, e.Slug, e.Name, e.ShortDescription, e.Description,
			e.License, strings.Join(e.Authors, ", "), e.ProjectFileURL, e.GDevelopVersion, e.InstructionsCount); err != nil {
			return fmt.Errorf("failed to insert example %s: %w", e.ID, err)
		}
		for i, tag := range e.Tags {
			if _, err := tagStmt.ExecContext(ctx, e.ID, i, tag); err != nil {
				return fmt.Errorf("failed to insert tag of %s: %w", e.ID, err)
			}
		}
		for i, url := range e.PreviewImageURLs {
			if _, err := previewStmt.ExecContext(ctx, e.ID, i, url); err != nil {
				return fmt.Errorf("failed to insert preview of %s: %w", e.ID, err)
			}
		}
	}
	return nil
}

func insertTags(ctx context.Context, tx *sql.Tx, filters *catalog.Filters) error {
	if filters == nil {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tags (name, is_default) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET is_default = excluded.is_default
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare tags statement: %w", err)
	}
	defer stmt.Close()

	for _, tag := range filters.AllTags {
		if _, err := stmt.ExecContext(ctx, tag, 0); err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", tag, err)
		}
	}
	for _, tag := range filters.DefaultTags {
		if _, err := stmt.ExecContext(ctx, tag, 1); err != nil {
			return fmt.Errorf("failed to insert default tag %q: %w", tag, err)
		}
	}
	return nil
}
