package galaxy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"galaxy-server/internal/shared/database"

	"github.com/lib/pq"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	logger := slog.With("component", "galaxy_repository", "operation", "init")
	logger.Debug("Initializing galaxy repository", "driver", db.Driver)
	return &Repository{db: db}
}

// CreateGalaxy stores the galaxy row and its bodies atomically.
func (r *Repository) CreateGalaxy(ctx context.Context, g *Galaxy, bodies []BodyInit) error {
	logger := slog.With(
		"component", "galaxy_repository",
		"operation", "create_galaxy",
		"galaxy_id", g.ID,
		"body_count", len(bodies),
	)
	logger.Debug("Creating galaxy")

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("Failed to rollback transaction", "error", rbErr)
		}
	}()

	query := `
		INSERT INTO galaxies (id, name, scale_radius, total_mass, requested_count, cutoff, seed, body_count, body_mass, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, query,
		g.ID,
		g.Name,
		g.Params.ScaleRadius,
		g.Params.TotalMass,
		g.Params.Count,
		g.Params.Cutoff,
		int64(g.Seed),
		g.BodyCount,
		g.BodyMass,
		g.CreatedAt,
	)
	if err != nil {
		logger.Error("Failed to insert galaxy", "error", err)
		return fmt.Errorf("failed to create galaxy: %w", err)
	}

	if err := r.insertBodies(ctx, tx, g.ID, bodies); err != nil {
		logger.Error("Failed to insert bodies", "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit galaxy", "error", err)
		return fmt.Errorf("failed to commit galaxy: %w", err)
	}

	logger.Info("Galaxy created successfully")
	return nil
}

func (r *Repository) insertBodies(ctx context.Context, tx *database.Tx, galaxyID string, bodies []BodyInit) error {
	var query string
	if r.db.Driver == "postgres" {
		query = pq.CopyIn("bodies", "galaxy_id", "idx", "mass", "x", "y", "vx", "vy")
	} else {
		query = `INSERT INTO bodies (galaxy_id, idx, mass, x, y, vx, vy) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare body insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range bodies {
		_, err := stmt.ExecContext(ctx, galaxyID, i, b.Mass, b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y)
		if err != nil {
			return fmt.Errorf("failed to insert body %d: %w", i, err)
		}
	}

	if r.db.Driver == "postgres" {
		// Flushes the COPY buffer
		if _, err := stmt.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to flush bodies: %w", err)
		}
	}
	return nil
}

func (r *Repository) GetGalaxyByID(ctx context.Context, id string) (*Galaxy, error) {
	logger := slog.With("component", "galaxy_repository", "operation", "get_galaxy", "galaxy_id", id)
	logger.Debug("Getting galaxy by ID")

	query := `
		SELECT id, name, scale_radius, total_mass, requested_count, cutoff, seed, body_count, body_mass, created_at
		FROM galaxies
		WHERE id = $1
	`

	galaxy, err := scanGalaxy(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Debug("Galaxy not found")
			return nil, nil
		}
		logger.Error("Database error getting galaxy", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Galaxy retrieved", "name", galaxy.Name)
	return galaxy, nil
}

// ListGalaxies returns up to limit galaxies, newest first.
func (r *Repository) ListGalaxies(ctx context.Context, limit, offset int) ([]Galaxy, error) {
	logger := slog.With("component", "galaxy_repository", "operation", "list_galaxies", "limit", limit, "offset", offset)
	logger.Debug("Listing galaxies")

	query := `
		SELECT id, name, scale_radius, total_mass, requested_count, cutoff, seed, body_count, body_mass, created_at
		FROM galaxies
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		logger.Error("Failed to query galaxies", "error", err)
		return nil, fmt.Errorf("failed to query galaxies: %w", err)
	}
	defer rows.Close()

	galaxies := []Galaxy{}
	for rows.Next() {
		g, err := scanGalaxy(rows)
		if err != nil {
			logger.Error("Failed to scan galaxy row", "error", err)
			return nil, fmt.Errorf("failed to scan galaxy: %w", err)
		}
		galaxies = append(galaxies, *g)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Error iterating galaxy rows", "error", err)
		return nil, fmt.Errorf("error iterating galaxies: %w", err)
	}

	logger.Debug("Galaxies retrieved", "count", len(galaxies))
	return galaxies, nil
}

// GetBodies returns the stored bodies of a galaxy in generation order.
func (r *Repository) GetBodies(ctx context.Context, galaxyID string) ([]BodyInit, error) {
	logger := slog.With("component", "galaxy_repository", "operation", "get_bodies", "galaxy_id", galaxyID)
	logger.Debug("Getting bodies")

	query := `
		SELECT mass, x, y, vx, vy
		FROM bodies
		WHERE galaxy_id = $1
		ORDER BY idx
	`

	rows, err := r.db.QueryContext(ctx, query, galaxyID)
	if err != nil {
		logger.Error("Failed to query bodies", "error", err)
		return nil, fmt.Errorf("failed to query bodies: %w", err)
	}
	defer rows.Close()

	bodies := []BodyInit{}
	for rows.Next() {
		var b BodyInit
		if err := rows.Scan(&b.Mass, &b.Position.X, &b.Position.Y, &b.Velocity.X, &b.Velocity.Y); err != nil {
			logger.Error("Failed to scan body row", "error", err)
			return nil, fmt.Errorf("failed to scan body: %w", err)
		}
		bodies = append(bodies, b)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Error iterating body rows", "error", err)
		return nil, fmt.Errorf("error iterating bodies: %w", err)
	}

	logger.Debug("Bodies retrieved", "count", len(bodies))
	return bodies, nil
}

// DeleteGalaxy removes a galaxy and its bodies. It reports whether a row
// was deleted.
func (r *Repository) DeleteGalaxy(ctx context.Context, id string) (bool, error) {
	logger := slog.With("component", "galaxy_repository", "operation", "delete_galaxy", "galaxy_id", id)
	logger.Debug("Deleting galaxy")

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("Failed to rollback transaction", "error", rbErr)
		}
	}()

	// Bodies go first so SQLite without foreign keys stays consistent.
	if _, err := tx.ExecContext(ctx, `DELETE FROM bodies WHERE galaxy_id = $1`, id); err != nil {
		logger.Error("Failed to delete bodies", "error", err)
		return false, fmt.Errorf("failed to delete bodies: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM galaxies WHERE id = $1`, id)
	if err != nil {
		logger.Error("Failed to delete galaxy", "error", err)
		return false, fmt.Errorf("failed to delete galaxy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit delete", "error", err)
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}

	logger.Info("Galaxy deleted", "deleted", affected > 0)
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGalaxy(row rowScanner) (*Galaxy, error) {
	var g Galaxy
	var seed int64
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Params.ScaleRadius,
		&g.Params.TotalMass,
		&g.Params.Count,
		&g.Params.Cutoff,
		&seed,
		&g.BodyCount,
		&g.BodyMass,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Seed = uint64(seed)
	g.AcceptanceProbability = g.Params.AcceptanceProbability()
	g.setBodyCount(g.BodyCount)
	return &g, nil
}
