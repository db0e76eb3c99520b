package repository

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) RecordView(ctx context.Context, view *model.CategoryView, keep int) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO user_category_views (id, user_id, category_id, viewed_at)
        VALUES (:id, :user_id, :category_id, :viewed_at)
        ON CONFLICT (user_id, category_id) DO UPDATE SET viewed_at = EXCLUDED.viewed_at
    `
	if _, err := tx.NamedExecContext(ctx, query, view); err != nil {
		return fmt.Errorf("upsert view: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        DELETE FROM user_category_views
        WHERE user_id = $1 AND id NOT IN (
            SELECT id FROM user_category_views
            WHERE user_id = $1
            ORDER BY viewed_at DESC, id
            LIMIT $2
        )`, view.UserID, keep)
	if err != nil {
		return fmt.Errorf("trim views: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) RecentCategories(ctx context.Context, userID string, limit int) ([]model.Category, error) {
	var categories []model.Category
	query := `
        SELECT c.id, c.name, c.code, c.parent_id, c.level, c.sort_order, c.is_active,
               c.image_url, c.description, c.created_at, c.updated_at
        FROM user_category_views v
        JOIN categories c ON c.id = v.category_id
        WHERE v.user_id = $1 AND c.is_active = TRUE
        ORDER BY v.viewed_at DESC
        LIMIT $2`
	err := r.DB.SelectContext(ctx, &categories, query, userID, limit)
	return categories, err
}
