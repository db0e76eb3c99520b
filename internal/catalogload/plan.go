package catalogload

import (
	"context"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// Lookup reads stored categories; category.Repository satisfies it.
type Lookup interface {
	// FindByCode returns (nil, nil) when the code is unknown.
	FindByCode(ctx context.Context, code string) (*model.Category, error)
	// FindChildren returns every stored child of the given parents.
	FindChildren(ctx context.Context, parentIDs []string) ([]model.Category, error)
}

// maxStoredWalk bounds subtree walks over a possibly corrupt stored tree.
const maxStoredWalk = 64

// PlannedCategory is a record with its resolved position in the tree.
type PlannedCategory struct {
	Record
	Level int
	// Existing is the stored row with this code, nil when it will be created.
	Existing *model.Category
	// Schema is the normalized field list, set when SchemaOK.
	Schema   model.FieldList
	SchemaOK bool
}

// Plan is the ordered list of upserts: parents always precede children.
type Plan struct {
	Categories []PlannedCategory
	Warnings   []string
}

type planner struct {
	lookup   Lookup
	maxDepth int

	file     map[string]*Record
	index    map[string]int
	stored   map[string]*model.Category
	levels   map[string]int
	warnings []string
}

func newPlanner(lookup Lookup, maxDepth int) *planner {
	return &planner{
		lookup:   lookup,
		maxDepth: maxDepth,
		file:     map[string]*Record{},
		index:    map[string]int{},
		stored:   map[string]*model.Category{},
		levels:   map[string]int{},
	}
}

func (p *planner) warn(format string, args ...interface{}) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *planner) storedByCode(ctx context.Context, code string) (*model.Category, error) {
	if c, ok := p.stored[code]; ok {
		return c, nil
	}
	c, err := p.lookup.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", code, err)
	}
	p.stored[code] = c
	return c, nil
}

// parentOf follows the dump for codes it contains and the store otherwise,
// since a dump row may re-parent a stored ancestor.
func (p *planner) parentOf(ctx context.Context, code string) (string, error) {
	if rec, ok := p.file[code]; ok {
		return rec.ParentCode, nil
	}
	c, err := p.storedByCode(ctx, code)
	if err != nil || c == nil || c.ParentCode == nil {
		return "", err
	}
	return *c.ParentCode, nil
}

func (p *planner) build(ctx context.Context, records []Record) (*Plan, error) {
	var order []string
	for i := range records {
		rec := records[i]
		if _, dup := p.file[rec.Code]; dup {
			p.warn("%s: duplicate row, the later one wins", rec.Code)
		} else {
			order = append(order, rec.Code)
		}
		p.file[rec.Code] = &rec
	}
	for i, code := range order {
		p.index[code] = i
	}

	for _, code := range order {
		rec := p.file[code]
		if rec.ParentCode == "" {
			continue
		}
		if rec.ParentCode == code {
			p.warn("%s: is its own parent, loading as a root", code)
			rec.ParentCode = ""
			continue
		}
		if _, ok := p.file[rec.ParentCode]; ok {
			continue
		}
		stored, err := p.storedByCode(ctx, rec.ParentCode)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			p.warn("%s: parent %s not found, loading as a root", code, rec.ParentCode)
			rec.ParentCode = ""
		}
	}

	for _, code := range order {
		if err := p.breakCycles(ctx, code); err != nil {
			return nil, err
		}
	}

	skipped := map[string]bool{}
	var kept []PlannedCategory
	for _, code := range order {
		level, err := p.level(ctx, code)
		if err != nil {
			return nil, err
		}
		if level >= p.maxDepth {
			p.warn("%s: level %d exceeds the maximum depth of %d levels, skipped", code, level, p.maxDepth)
			skipped[code] = true
			continue
		}
		existing, err := p.storedByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Level != level {
			// Stored descendants that stay put follow the row to its new level.
			height, err := p.storedHeight(ctx, existing.ID)
			if err != nil {
				return nil, err
			}
			if level+height >= p.maxDepth {
				p.warn("%s: moving it to level %d pushes its stored subtree of %d levels past the maximum depth of %d levels, skipped",
					code, level, height, p.maxDepth)
				skipped[code] = true
				continue
			}
		}
		kept = append(kept, PlannedCategory{
			Record:   *p.file[code],
			Level:    level,
			Existing: existing,
		})
	}

	plan := &Plan{}
	for _, pc := range kept {
		ancestor, err := p.skippedAncestor(ctx, pc.Code, skipped)
		if err != nil {
			return nil, err
		}
		if ancestor != "" {
			p.warn("%s: ancestor %s was skipped, skipped", pc.Code, ancestor)
			continue
		}
		plan.Categories = append(plan.Categories, pc)
	}

	sort.SliceStable(plan.Categories, func(i, j int) bool {
		a, b := plan.Categories[i], plan.Categories[j]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
	plan.Warnings = p.warnings
	return plan, nil
}

// breakCycles walks up from code; when the walk revisits a node, the dump row
// of that cycle that appears first in the file becomes a root.
func (p *planner) breakCycles(ctx context.Context, code string) error {
	for {
		seen := map[string]int{}
		var path []string
		cur := code
		for cur != "" {
			if at, ok := seen[cur]; ok {
				if !p.breakAt(path[at:]) {
					return fmt.Errorf("stored categories form a cycle through %s", cur)
				}
				break
			}
			seen[cur] = len(path)
			path = append(path, cur)
			next, err := p.parentOf(ctx, cur)
			if err != nil {
				return err
			}
			cur = next
		}
		if cur == "" {
			return nil
		}
	}
}

func (p *planner) breakAt(cycle []string) bool {
	victim := ""
	for _, c := range cycle {
		if _, ok := p.file[c]; !ok {
			continue
		}
		if victim == "" || p.index[c] < p.index[victim] {
			victim = c
		}
	}
	if victim == "" {
		return false
	}
	p.warn("%s: parent chain forms a cycle, loading as a root", victim)
	p.file[victim].ParentCode = ""
	return true
}

func (p *planner) level(ctx context.Context, code string) (int, error) {
	if l, ok := p.levels[code]; ok {
		return l, nil
	}
	parent, err := p.parentOf(ctx, code)
	if err != nil {
		return 0, err
	}
	level := 0
	if parent != "" {
		pl, err := p.level(ctx, parent)
		if err != nil {
			return 0, err
		}
		level = pl + 1
	}
	p.levels[code] = level
	return level, nil
}

// storedHeight is the depth of the stored subtree below id, not counting
// rows the dump places itself.
func (p *planner) storedHeight(ctx context.Context, id string) (int, error) {
	height := 0
	frontier := []string{id}
	for height < maxStoredWalk {
		children, err := p.lookup.FindChildren(ctx, frontier)
		if err != nil {
			return 0, fmt.Errorf("children of %s: %w", id, err)
		}
		frontier = frontier[:0]
		for _, c := range children {
			if _, inFile := p.file[c.Code]; inFile {
				continue
			}
			frontier = append(frontier, c.ID)
		}
		if len(frontier) == 0 {
			break
		}
		height++
	}
	return height, nil
}

// skippedAncestor returns the nearest ancestor of code, in the planned tree,
// that is not being loaded.
func (p *planner) skippedAncestor(ctx context.Context, code string, skipped map[string]bool) (string, error) {
	cur := code
	for i := 0; i < maxStoredWalk; i++ {
		parent, err := p.parentOf(ctx, cur)
		if err != nil || parent == "" {
			return "", err
		}
		if skipped[parent] {
			return parent, nil
		}
		cur = parent
	}
	return "", nil
}
