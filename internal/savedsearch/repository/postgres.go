package repository

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, s *model.SavedSearch) error {
	query := `
        INSERT INTO saved_searches (id, user_id, name, category_code, criteria, created_at)
        VALUES ($1, $2, $3, $4, $5::jsonb, $6)
    `
	_, err := r.DB.ExecContext(ctx, query, s.ID, s.UserID, s.Name, s.CategoryCode, string(s.Criteria), s.CreatedAt)
	return err
}

func (r *PGRepository) ListByUser(ctx context.Context, userID string) ([]model.SavedSearch, error) {
	searches := []model.SavedSearch{}
	query := `
        SELECT id, user_id, name, category_code, criteria, created_at
        FROM saved_searches
        WHERE user_id = $1
        ORDER BY created_at DESC`
	err := r.DB.SelectContext(ctx, &searches, query, userID)
	return searches, err
}

func (r *PGRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
