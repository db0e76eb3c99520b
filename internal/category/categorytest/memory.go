// Package categorytest provides an in-memory category.Repository for tests.
package categorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*model.Category

	// Calls counts FindActiveChildren/HasActiveChildren hits.
	Calls int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]*model.Category{}}
}

// Add stores c as-is, deriving its level from the stored parent.
func (m *MemoryRepository) Add(id, code, parentID string, order int) *model.Category {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &model.Category{
		BaseModel: model.BaseModel{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Name:      code,
		Code:      code,
		SortOrder: order,
		IsActive:  true,
	}
	if parentID != "" {
		pid := parentID
		c.ParentID = &pid
		if p, ok := m.byID[parentID]; ok {
			c.Level = p.Level + 1
		}
	}
	m.byID[id] = c
	cp := *c
	return &cp
}

func (m *MemoryRepository) SetActive(id string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].IsActive = active
}

func (m *MemoryRepository) Get(id string) *model.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil
	}
	return m.withParent(c)
}

func (m *MemoryRepository) withParent(c *model.Category) *model.Category {
	cp := *c
	if c.ParentID != nil {
		if p, ok := m.byID[*c.ParentID]; ok {
			code, name := p.Code, p.Name
			cp.ParentCode = &code
			cp.ParentName = &name
		}
	}
	return &cp
}

func (m *MemoryRepository) Create(_ context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id string) (*model.Category, error) {
	return m.Get(id), nil
}

func (m *MemoryRepository) FindByCode(_ context.Context, code string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Code == code {
			return m.withParent(c), nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) FindAll(_ context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Category
	for _, c := range m.byID {
		if f.ParentID != nil {
			if *f.ParentID == "" && c.ParentID != nil {
				continue
			}
			if *f.ParentID != "" && (c.ParentID == nil || *c.ParentID != *f.ParentID) {
				continue
			}
		}
		if f.IsActive != nil && c.IsActive != *f.IsActive {
			continue
		}
		out = append(out, *m.withParent(c))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.OrderBy == "tree" && a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})

	total := len(out)
	if f.Limit > 0 {
		start := f.Offset
		if start > len(out) {
			start = len(out)
		}
		end := start + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (m *MemoryRepository) FindActiveChildren(_ context.Context, parentIDs []string) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	want := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = struct{}{}
	}

	var out []model.Category
	for _, c := range m.byID {
		if c.ParentID == nil || !c.IsActive {
			continue
		}
		if _, ok := want[*c.ParentID]; ok {
			out = append(out, *m.withParent(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryRepository) FindChildren(_ context.Context, parentIDs []string) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = struct{}{}
	}
	var out []model.Category
	for _, c := range m.byID {
		if c.ParentID == nil {
			continue
		}
		if _, ok := want[*c.ParentID]; ok {
			out = append(out, *m.withParent(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MemoryRepository) HasActiveChildren(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	for _, c := range m.byID {
		if c.ParentID != nil && *c.ParentID == id && c.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) SubtreeHeight(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height(id, 0), nil
}

func (m *MemoryRepository) height(id string, depth int) int {
	if depth > 64 {
		return depth
	}
	best := 0
	for _, c := range m.byID {
		if c.ParentID != nil && *c.ParentID == id {
			if h := 1 + m.height(c.ID, depth+1); h > best {
				best = h
			}
		}
	}
	return best
}

func (m *MemoryRepository) Update(_ context.Context, c *model.Category, levelsChanged bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.ParentCode, cp.ParentName = nil, nil
	m.byID[c.ID] = &cp
	if levelsChanged {
		m.relevel(c.ID, c.Level, 0)
	}
	return nil
}

func (m *MemoryRepository) relevel(id string, level, depth int) {
	if depth > 64 {
		return
	}
	for _, c := range m.byID {
		if c.ParentID != nil && *c.ParentID == id {
			c.Level = level + 1
			m.relevel(c.ID, c.Level, depth+1)
		}
	}
}

func (m *MemoryRepository) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		c.IsActive = false
	}
	return nil
}
