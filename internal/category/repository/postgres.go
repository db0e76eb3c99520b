package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// Recursive walks stop here even if the stored tree is corrupt.
const maxWalkDepth = 64

const selectCategory = `
	SELECT c.id, c.name, c.code, c.parent_id, c.level, c.sort_order, c.is_active,
	       c.image_url, c.description, c.created_at, c.updated_at,
	       p.code AS parent_code, p.name AS parent_name
	FROM categories c
	LEFT JOIN categories p ON p.id = c.parent_id`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, name, code, parent_id, level, sort_order, is_active, image_url, description, created_at, updated_at)
        VALUES (:id, :name, :code, :parent_id, :level, :sort_order, :is_active, :image_url, :description, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.findOne(ctx, selectCategory+` WHERE c.id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByCode(ctx context.Context, code string) (*model.Category, error) {
	return r.findOne(ctx, selectCategory+` WHERE c.code = $1 LIMIT 1`, code)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Category, error) {
	var category model.Category
	err := r.DB.GetContext(ctx, &category, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var categories []model.Category
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "c.parent_id IS NULL")
		} else {
			conditions = append(conditions, "c.parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "c.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM categories c"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, err
	}

	orderBy := "c.sort_order ASC, c.name ASC"
	if f.OrderBy == "tree" {
		orderBy = "c.level ASC, c.sort_order ASC, c.name ASC"
	}
	query := selectCategory + whereClause + " ORDER BY " + orderBy

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &categories, args); err != nil {
		return nil, 0, err
	}

	return categories, count, nil
}

func (r *PGRepository) FindActiveChildren(ctx context.Context, parentIDs []string) ([]model.Category, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(selectCategory+`
		WHERE c.parent_id IN (?) AND c.is_active = TRUE
		ORDER BY c.sort_order ASC, c.name ASC`, parentIDs)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var children []model.Category
	if err := r.DB.SelectContext(ctx, &children, query, args...); err != nil {
		return nil, err
	}
	return children, nil
}

func (r *PGRepository) FindChildren(ctx context.Context, parentIDs []string) ([]model.Category, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(selectCategory+`
		WHERE c.parent_id IN (?)
		ORDER BY c.sort_order ASC, c.name ASC`, parentIDs)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var children []model.Category
	if err := r.DB.SelectContext(ctx, &children, query, args...); err != nil {
		return nil, err
	}
	return children, nil
}

func (r *PGRepository) HasActiveChildren(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1 AND is_active = TRUE)`
	if err := r.DB.GetContext(ctx, &exists, query, id); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepository) SubtreeHeight(ctx context.Context, id string) (int, error) {
	var height int
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id, 0 AS depth FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, s.depth + 1
			FROM categories c
			JOIN subtree s ON c.parent_id = s.id
			WHERE s.depth < $2
		)
		SELECT COALESCE(MAX(depth), 0) FROM subtree`
	if err := r.DB.GetContext(ctx, &height, query, id, maxWalkDepth); err != nil {
		return 0, err
	}
	return height, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category, levelsChanged bool) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            level = :level,
            sort_order = :sort_order,
            is_active = :is_active,
            image_url = :image_url,
            description = :description,
            updated_at = :updated_at
        WHERE id = :id
    `
	if _, err := tx.NamedExecContext(ctx, query, c); err != nil {
		return err
	}

	if levelsChanged {
		if err := RecomputeSubtreeLevels(ctx, tx, c.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecomputeSubtreeLevels rewrites the level of every descendant of rootID from
// the stored level of rootID.
func RecomputeSubtreeLevels(ctx context.Context, tx *sqlx.Tx, rootID string) error {
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id, level, 0 AS depth FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, s.level + 1, s.depth + 1
			FROM categories c
			JOIN subtree s ON c.parent_id = s.id
			WHERE s.depth < $2
		)
		UPDATE categories c
		SET level = s.level, updated_at = NOW()
		FROM subtree s
		WHERE c.id = s.id AND c.id <> $1 AND c.level <> s.level`
	_, err := tx.ExecContext(ctx, query, rootID, maxWalkDepth)
	return err
}

func (r *PGRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE categories SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}
