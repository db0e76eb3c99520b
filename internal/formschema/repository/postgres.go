package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByCategoryID(ctx context.Context, categoryID string) (*model.FormSchema, error) {
	var schema model.FormSchema
	query := `SELECT id, category_id, is_active, fields, created_at, updated_at
		FROM category_form_schemas WHERE category_id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &schema, query, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &schema, nil
}

func (r *PGRepository) Upsert(ctx context.Context, s *model.FormSchema) error {
	_, err := UpsertSchema(ctx, r.DB, s)
	return err
}

// UpsertSchema writes s through any sqlx executor so bulk loads can reuse it
// inside their own transaction. It reports whether a new row was inserted.
func UpsertSchema(ctx context.Context, db sqlx.ExtContext, s *model.FormSchema) (bool, error) {
	query := `
		INSERT INTO category_form_schemas (id, category_id, is_active, fields, created_at, updated_at)
		VALUES (:id, :category_id, :is_active, :fields, :created_at, :updated_at)
		ON CONFLICT (category_id) DO UPDATE
		SET is_active = EXCLUDED.is_active,
		    fields = EXCLUDED.fields,
		    updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted, id`

	named, args, err := sqlx.Named(query, s)
	if err != nil {
		return false, err
	}
	named = db.Rebind(named)

	var res struct {
		Inserted bool   `db:"inserted"`
		ID       string `db:"id"`
	}
	if err := sqlx.GetContext(ctx, db, &res, named, args...); err != nil {
		return false, err
	}
	s.ID = res.ID
	return res.Inserted, nil
}

func (r *PGRepository) ListCategoriesWithForms(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	query := `
		SELECT c.id, c.name, c.code, c.parent_id, c.level, c.sort_order, c.is_active,
		       c.image_url, c.description, c.created_at, c.updated_at
		FROM categories c
		JOIN category_form_schemas s ON s.category_id = c.id
		WHERE c.is_active = TRUE AND s.is_active = TRUE
		ORDER BY c.level ASC, c.sort_order ASC, c.name ASC`
	if err := r.DB.SelectContext(ctx, &cats, query); err != nil {
		return nil, err
	}
	return cats, nil
}
