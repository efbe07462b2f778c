package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"uvp-showroom/internal/showroom/models"
)

// ErrNotFound is returned for unknown project ids.
var ErrNotFound = errors.New("project not found")

// ModelBasePlaceholder is replaced by the configured model storage URL when
// the catalog is seeded.
const ModelBasePlaceholder = "{{MODEL_BASE_URL}}"

//go:embed projects.json
var catalogJSON []byte

//go:embed migrations/*.sql
var migrations embed.FS

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init runs the migrations and replaces the catalog with the embedded
// projects.json.
func (r *Repository) Init(ctx context.Context, modelBaseURL string) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	projects, err := EmbeddedCatalog(modelBaseURL)
	if err != nil {
		return err
	}
	return r.Seed(ctx, projects)
}

// ListProjects returns the catalog in insertion order.
func (r *Repository) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, title, description, thumbnail, date, client, type, model_url
        FROM projects
        ORDER BY position
    `)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Thumbnail, &p.Date, &p.Client, &p.Type, &p.ModelURL); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// one connection: release it before the detail queries
	rows.Close()

	for i := range projects {
		if err := r.loadDetails(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// GetProject returns one project or ErrNotFound.
func (r *Repository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, title, description, thumbnail, date, client, type, model_url
        FROM projects
        WHERE id = ?
    `, id)

	var p models.Project
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Thumbnail, &p.Date, &p.Client, &p.Type, &p.ModelURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	if err := r.loadDetails(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Count returns the number of catalog entries.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (r *Repository) loadDetails(ctx context.Context, p *models.Project) error {
	rows, err := r.db.QueryContext(ctx, `
        SELECT path FROM project_images WHERE project_id = ? ORDER BY position
    `, p.ID)
	if err != nil {
		return fmt.Errorf("query images: %w", err)
	}
	p.Images = []string{}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return fmt.Errorf("scan image: %w", err)
		}
		p.Images = append(p.Images, path)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx, `
        SELECT name, value FROM project_specs WHERE project_id = ?
    `, p.ID)
	if err != nil {
		return fmt.Errorf("query specs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return fmt.Errorf("scan spec: %w", err)
		}
		if p.Specs == nil {
			p.Specs = map[string]string{}
		}
		p.Specs[name] = value
	}
	return rows.Err()
}

// ============================================================
// Migrations & Seeding
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// Seed replaces the catalog with projects, keeping their order.
func (r *Repository) Seed(ctx context.Context, projects []models.Project) error {
	if err := Validate(projects); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM project_specs`, `DELETE FROM project_images`, `DELETE FROM projects`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}

	for pos, p := range projects {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO projects (id, position, title, description, thumbnail, date, client, type, model_url)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, p.ID, pos, p.Title, p.Description, p.Thumbnail, p.Date, p.Client, p.Type, p.ModelURL); err != nil {
			return fmt.Errorf("seed project %s: %w", p.ID, err)
		}
		for i, img := range p.Images {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO project_images (project_id, position, path) VALUES (?, ?, ?)
            `, p.ID, i, img); err != nil {
				return fmt.Errorf("seed image %s/%d: %w", p.ID, i, err)
			}
		}
		for name, value := range p.Specs {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO project_specs (project_id, name, value) VALUES (?, ?, ?)
            `, p.ID, name, value); err != nil {
				return fmt.Errorf("seed spec %s/%s: %w", p.ID, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// EmbeddedCatalog parses the bundled projects.json, substituting the model
// base URL.
func EmbeddedCatalog(modelBaseURL string) ([]models.Project, error) {
	return ParseCatalog(catalogJSON, modelBaseURL)
}

// ParseCatalog decodes a catalog file.
func ParseCatalog(data []byte, modelBaseURL string) ([]models.Project, error) {
	var projects []models.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	base := strings.TrimRight(modelBaseURL, "/")
	for i := range projects {
		projects[i].ModelURL = strings.ReplaceAll(projects[i].ModelURL, ModelBasePlaceholder, base)
	}
	return projects, nil
}

// Validate checks that every project has an id and a title and that ids
// are unique.
func Validate(projects []models.Project) error {
	seen := make(map[string]bool, len(projects))
	for i, p := range projects {
		if p.ID == "" {
			return fmt.Errorf("catalog entry %d: missing id", i)
		}
		if p.Title == "" {
			return fmt.Errorf("catalog entry %s: missing title", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("catalog entry %s: duplicate id", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// OpenSQLite opens the sqlite database at dbPath, creating its directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
