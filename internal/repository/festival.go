package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/festifind/festifind/internal/model"
)

const festivalColumns = `id, name, "startDate", "endDate", location, source, favorite, "isArchived", notes`

// FestivalRepository is the live Store backed by the festivals table.
type FestivalRepository struct {
	db DBTX
}

// NewFestivalRepository constructs a FestivalRepository.
func NewFestivalRepository(db DBTX) *FestivalRepository {
	return &FestivalRepository{db: db}
}

// Live is always true.
func (r *FestivalRepository) Live() bool { return true }

// List returns all festivals matching f ordered by start date, then id.
func (r *FestivalRepository) List(ctx context.Context, f model.Filter) ([]model.FestivalWithPreferences, error) {
	var (
		where []string
		args  []any
	)
	if f.ID != "" {
		args = append(args, f.ID)
		where = append(where, fmt.Sprintf("id = $%d", len(args)))
	}
	if f.Favorite != nil {
		args = append(args, *f.Favorite)
		where = append(where, fmt.Sprintf("favorite = $%d", len(args)))
	}
	if f.Archived != nil {
		args = append(args, *f.Archived)
		where = append(where, fmt.Sprintf(`"isArchived" = $%d`, len(args)))
	}

	query := "SELECT " + festivalColumns + " FROM festivals"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY "startDate" ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list festivals: %w", err)
	}
	defer rows.Close()

	festivals := []model.FestivalWithPreferences{}
	for rows.Next() {
		f, err := scanFestival(rows)
		if err != nil {
			return nil, err
		}
		festivals = append(festivals, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list festivals: %w", err)
	}
	return festivals, nil
}

// Update writes the set fields of p to the row with the given id in a single
// statement and returns the updated row, or ErrNotFound.
func (r *FestivalRepository) Update(ctx context.Context, id string, p model.Patch) (*model.FestivalWithPreferences, error) {
	if p.Empty() {
		return nil, ErrEmptyPatch
	}

	var (
		set  []string
		args []any
	)
	if p.Favorite != nil {
		args = append(args, *p.Favorite)
		set = append(set, fmt.Sprintf("favorite = $%d", len(args)))
	}
	if p.Notes != nil {
		args = append(args, *p.Notes)
		set = append(set, fmt.Sprintf("notes = $%d", len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE festivals SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), festivalColumns)

	f, err := scanFestival(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("festival %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update festival: %w", err)
	}
	return f, nil
}

// Insert adds f unless a row with the same id already exists. It reports
// whether a row was written.
func (r *FestivalRepository) Insert(ctx context.Context, f model.FestivalWithPreferences) (bool, error) {
	location, err := json.Marshal(f.Location)
	if err != nil {
		return false, fmt.Errorf("encode location: %w", err)
	}
	source, err := json.Marshal(f.Source)
	if err != nil {
		return false, fmt.Errorf("encode source: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO festivals (`+festivalColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		f.ID, f.Name, f.StartDate, f.EndDate, string(location), string(source),
		f.IsFavorite, f.IsArchived, f.Notes,
	)
	if err != nil {
		return false, fmt.Errorf("insert festival: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanFestival(row pgx.Row) (*model.FestivalWithPreferences, error) {
	var (
		f                model.FestivalWithPreferences
		location, source []byte
	)
	err := row.Scan(&f.ID, &f.Name, &f.StartDate, &f.EndDate, &location, &source,
		&f.IsFavorite, &f.IsArchived, &f.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan festival: %w", err)
	}
	if len(location) > 0 {
		if err := json.Unmarshal(location, &f.Location); err != nil {
			return nil, fmt.Errorf("decode location of %s: %w", f.ID, err)
		}
	}
	if len(source) > 0 {
		if err := json.Unmarshal(source, &f.Source); err != nil {
			return nil, fmt.Errorf("decode source of %s: %w", f.ID, err)
		}
	}
	return &f, nil
}
