// Package formschematest provides an in-memory formschema.Repository for tests.
package formschematest

import (
	"context"
	"sort"
	"sync"

	"github.com/fekuna/omnipos-marketplace-service/internal/category/categorytest"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type MemoryRepository struct {
	mu         sync.Mutex
	byCategory map[string]*model.FormSchema
	categories *categorytest.MemoryRepository
}

// NewMemoryRepository resolves categories for ListCategoriesWithForms through cats.
func NewMemoryRepository(cats *categorytest.MemoryRepository) *MemoryRepository {
	return &MemoryRepository{byCategory: map[string]*model.FormSchema{}, categories: cats}
}

func (m *MemoryRepository) Put(categoryID string, active bool, fields ...model.FieldDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byCategory[categoryID] = &model.FormSchema{
		BaseModel:  model.BaseModel{ID: "schema-" + categoryID},
		CategoryID: categoryID,
		IsActive:   active,
		Fields:     fields,
	}
}

func (m *MemoryRepository) FindByCategoryID(_ context.Context, categoryID string) (*model.FormSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byCategory[categoryID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) Upsert(_ context.Context, schema *model.FormSchema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byCategory[schema.CategoryID]; ok {
		schema.ID = existing.ID
		schema.CreatedAt = existing.CreatedAt
	}
	cp := *schema
	m.byCategory[schema.CategoryID] = &cp
	return nil
}

func (m *MemoryRepository) ListCategoriesWithForms(_ context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Category
	for id, s := range m.byCategory {
		if !s.IsActive {
			continue
		}
		if c := m.categories.Get(id); c != nil && c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
