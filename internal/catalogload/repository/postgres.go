package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/catalogload"
	categoryRepo "github.com/fekuna/omnipos-marketplace-service/internal/category/repository"
	schemaRepo "github.com/fekuna/omnipos-marketplace-service/internal/formschema/repository"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGStore struct {
	DB *sqlx.DB
}

func NewPGStore(db *sqlx.DB) *PGStore {
	return &PGStore{DB: db}
}

type categoryRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"`
	ParentCode  *string   `db:"parent_code"`
	Level       int       `db:"level"`
	SortOrder   int       `db:"sort_order"`
	IsActive    bool      `db:"is_active"`
	ImageURL    *string   `db:"image_url"`
	Description *string   `db:"description"`
	Now         time.Time `db:"now"`
}

// Parents are resolved by code inside the transaction, so rows created
// earlier in the same plan are visible.
const upsertCategory = `
	INSERT INTO categories (id, name, code, parent_id, level, sort_order, is_active, image_url, description, created_at, updated_at)
	VALUES (:id, :name, :code, (SELECT id FROM categories WHERE code = :parent_code), :level, :sort_order,
	        :is_active, :image_url, :description, :now, :now)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name,
	    parent_id = EXCLUDED.parent_id,
	    level = EXCLUDED.level,
	    sort_order = EXCLUDED.sort_order,
	    is_active = EXCLUDED.is_active,
	    image_url = EXCLUDED.image_url,
	    description = EXCLUDED.description,
	    updated_at = EXCLUDED.updated_at
	RETURNING id, (xmax = 0) AS inserted`

func (s *PGStore) Apply(ctx context.Context, plan *catalogload.Plan) (*catalogload.Result, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, upsertCategory)
	if err != nil {
		return nil, fmt.Errorf("prepare category upsert: %w", err)
	}
	defer stmt.Close()

	res := &catalogload.Result{}
	now := time.Now()
	var moved []string

	for _, pc := range plan.Categories {
		row := categoryRow{
			ID:          uuid.New().String(),
			Name:        pc.Name,
			Code:        pc.Code,
			Level:       pc.Level,
			SortOrder:   pc.Order,
			IsActive:    pc.IsActive,
			ImageURL:    pc.ImageURL,
			Description: pc.Description,
			Now:         now,
		}
		if pc.ParentCode != "" {
			parent := pc.ParentCode
			row.ParentCode = &parent
		}

		var out struct {
			ID       string `db:"id"`
			Inserted bool   `db:"inserted"`
		}
		if err := stmt.GetContext(ctx, &out, row); err != nil {
			return nil, fmt.Errorf("upsert category %s: %w", pc.Code, err)
		}
		if out.Inserted {
			res.CategoriesCreated++
		} else {
			res.CategoriesUpdated++
			if pc.Existing != nil && pc.Existing.Level != pc.Level {
				moved = append(moved, out.ID)
			}
		}

		if !pc.SchemaOK {
			continue
		}
		created, err := schemaRepo.UpsertSchema(ctx, tx, &model.FormSchema{
			BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			CategoryID: out.ID,
			IsActive:   true,
			Fields:     pc.Schema,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert schema of %s: %w", pc.Code, err)
		}
		if created {
			res.SchemasCreated++
		} else {
			res.SchemasUpdated++
		}
	}

	// Stored descendants that are not in the dump follow their moved ancestor.
	for _, id := range moved {
		if err := categoryRepo.RecomputeSubtreeLevels(ctx, tx, id); err != nil {
			return nil, fmt.Errorf("recompute levels: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}
