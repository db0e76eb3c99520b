package catalogload

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/category/categorytest"
	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/formschematest"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore applies plans to the in-memory repositories the way the
// Postgres store does.
type memoryStore struct {
	cats    *categorytest.MemoryRepository
	schemas *formschematest.MemoryRepository
}

func (m *memoryStore) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	res := &Result{}
	for _, pc := range plan.Categories {
		var parentID *string
		if pc.ParentCode != "" {
			p, _ := m.cats.FindByCode(ctx, pc.ParentCode)
			parentID = &p.ID
		}

		c, _ := m.cats.FindByCode(ctx, pc.Code)
		if c == nil {
			c = &model.Category{BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: time.Now()}}
			res.CategoriesCreated++
		} else {
			res.CategoriesUpdated++
		}
		moved := c.Level != pc.Level
		c.Name, c.Code, c.ParentID, c.Level = pc.Name, pc.Code, parentID, pc.Level
		c.SortOrder, c.IsActive, c.ImageURL, c.Description = pc.Order, pc.IsActive, pc.ImageURL, pc.Description
		if pc.Existing == nil {
			_ = m.cats.Create(ctx, c)
		} else {
			_ = m.cats.Update(ctx, c, moved)
		}

		if !pc.SchemaOK {
			continue
		}
		if s, _ := m.schemas.FindByCategoryID(ctx, c.ID); s == nil {
			res.SchemasCreated++
		} else {
			res.SchemasUpdated++
		}
		_ = m.schemas.Upsert(ctx, &model.FormSchema{
			BaseModel:  model.BaseModel{ID: uuid.New().String()},
			CategoryID: c.ID,
			IsActive:   true,
			Fields:     pc.Schema,
		})
	}
	return res, nil
}

func newLoader(maxDepth int) (*categorytest.MemoryRepository, *formschematest.MemoryRepository, *Loader) {
	cats := categorytest.NewMemoryRepository()
	schemas := formschematest.NewMemoryRepository(cats)
	store := &memoryStore{cats: cats, schemas: schemas}
	return cats, schemas, NewLoader(cats, schemas, store, maxDepth, logger.NewNop())
}

func rec(code, parent string, order int) Record {
	return Record{Code: code, Name: code, ParentCode: parent, Order: order, IsActive: true}
}

func codes(plan *Plan) []string {
	out := make([]string, len(plan.Categories))
	for i, pc := range plan.Categories {
		out[i] = pc.Code
	}
	return out
}

func TestPlanOrdersParentsFirst(t *testing.T) {
	_, _, l := newLoader(5)

	plan, err := l.Plan(context.Background(), []Record{
		rec("CNC", "LATHES", 1),
		rec("MANUAL", "LATHES", 0),
		rec("LATHES", "MACHINES", 2),
		rec("PUMPS", "MACHINES", 1),
		rec("MACHINES", "", 9),
		rec("AGRI", "", 1),
	})
	require.NoError(t, err)
	assert.Empty(t, plan.Warnings)
	assert.Equal(t, []string{"AGRI", "MACHINES", "PUMPS", "LATHES", "MANUAL", "CNC"}, codes(plan))

	levels := map[string]int{}
	for _, pc := range plan.Categories {
		levels[pc.Code] = pc.Level
		assert.Nil(t, pc.Existing)
	}
	assert.Equal(t, map[string]int{"AGRI": 0, "MACHINES": 0, "PUMPS": 1, "LATHES": 1, "MANUAL": 2, "CNC": 2}, levels)
}

func TestPlanResolvesStoredAndUnknownParents(t *testing.T) {
	cats, _, l := newLoader(5)
	cats.Add("m", "MACHINES", "", 1)
	cats.Add("l", "LATHES", "m", 1)

	plan, err := l.Plan(context.Background(), []Record{
		rec("CNC", "LATHES", 1),
		rec("ORPHAN", "NOWHERE", 1),
	})
	require.NoError(t, err)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "ORPHAN")

	assert.Equal(t, []string{"ORPHAN", "CNC"}, codes(plan))
	assert.Equal(t, 0, plan.Categories[0].Level)
	assert.Equal(t, "", plan.Categories[0].ParentCode)
	assert.Equal(t, 2, plan.Categories[1].Level)
}

func TestPlanBreaksCycles(t *testing.T) {
	cats, _, l := newLoader(5)
	cats.Add("m", "MACHINES", "", 1)
	cats.Add("l", "LATHES", "m", 1)

	plan, err := l.Plan(context.Background(), []Record{
		rec("A", "B", 1),
		rec("B", "A", 1),
		rec("SELF", "SELF", 1),
		// Moving MACHINES under LATHES, which is stored under MACHINES.
		rec("MACHINES", "LATHES", 1),
	})
	require.NoError(t, err)
	assert.Len(t, plan.Warnings, 3)

	byCode := map[string]PlannedCategory{}
	for _, pc := range plan.Categories {
		byCode[pc.Code] = pc
	}
	assert.Equal(t, "", byCode["A"].ParentCode, "first row of the cycle becomes the root")
	assert.Equal(t, 0, byCode["A"].Level)
	assert.Equal(t, 1, byCode["B"].Level)
	assert.Equal(t, 0, byCode["SELF"].Level)
	assert.Equal(t, "", byCode["MACHINES"].ParentCode)
	assert.NotNil(t, byCode["MACHINES"].Existing)
}

func TestPlanSkipsRowsBeyondMaxDepth(t *testing.T) {
	_, _, l := newLoader(3)

	plan, err := l.Plan(context.Background(), []Record{
		rec("L0", "", 1),
		rec("L1", "L0", 1),
		rec("L2", "L1", 1),
		rec("L3", "L2", 1),
		rec("L4", "L3", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"L0", "L1", "L2"}, codes(plan))
	assert.Len(t, plan.Warnings, 2)
}

func TestPlanDuplicateRowsLastWins(t *testing.T) {
	_, _, l := newLoader(5)
	first := rec("X", "", 1)
	second := rec("X", "", 2)
	second.Name = "Renamed"

	plan, err := l.Plan(context.Background(), []Record{first, second})
	require.NoError(t, err)
	require.Len(t, plan.Categories, 1)
	assert.Equal(t, "Renamed", plan.Categories[0].Name)
	assert.Len(t, plan.Warnings, 1)
}

const dump = `[
	{"category_code": "MACHINES", "name": "Machines", "order": 1},
	{"category_code": "CNC", "name": "CNC", "parent_category_code": "LATHES", "order": 1,
	 "category_fields_config": [
		{"field_id": "brand", "label": "Brand", "type": "INPUT", "is_required": true},
		{"field_id": "condition", "label": "Condition", "type": "SELECT",
		 "options": [{"value": "new", "label": "New"}, {"value": "used", "label": "Used"}]}
	 ]},
	{"category_code": "LATHES", "name": "Lathes", "parent_category_code": "MACHINES", "order": 1},
	{"category_code": "BROKEN", "parent_category_code": "MACHINES", "order": 2,
	 "category_fields_config": [{"field_id": "a"}, {"field_id": "a"}]}
]`

func load(t *testing.T, l *Loader, data string) (*Plan, *Result) {
	t.Helper()
	records, _, err := Parse([]byte(data))
	require.NoError(t, err)
	plan, err := l.Plan(context.Background(), records)
	require.NoError(t, err)
	res, err := l.Apply(context.Background(), plan)
	require.NoError(t, err)
	return plan, res
}

func TestLoadIsIdempotent(t *testing.T) {
	cats, schemas, l := newLoader(5)
	ctx := context.Background()

	plan, res := load(t, l, dump)
	assert.Equal(t, Result{CategoriesCreated: 4, SchemasCreated: 1}, *res)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "BROKEN")

	cnc, err := cats.FindByCode(ctx, "CNC")
	require.NoError(t, err)
	assert.Equal(t, 2, cnc.Level)
	require.NotNil(t, cnc.ParentCode)
	assert.Equal(t, "LATHES", *cnc.ParentCode)
	schema, err := schemas.FindByCategoryID(ctx, cnc.ID)
	require.NoError(t, err)
	require.NotNil(t, schema)
	assert.Len(t, schema.Fields, 2)

	_, res = load(t, l, dump)
	assert.Equal(t, Result{CategoriesUpdated: 4, SchemasUpdated: 1}, *res)

	again, err := cats.FindByCode(ctx, "CNC")
	require.NoError(t, err)
	assert.Equal(t, cnc.ID, again.ID)
	all, total, err := cats.FindAll(ctx, &dto.CategoryFilters{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, all, 4)
}

func TestLoadMovesStoredSubtree(t *testing.T) {
	cats, _, l := newLoader(5)
	cats.Add("m", "MACHINES", "", 1)
	cats.Add("l", "LATHES", "m", 1)
	cats.Add("c", "CNC", "l", 1)

	_, res := load(t, l, `[{"category_code": "LATHES", "name": "Lathes"}]`)
	assert.Equal(t, 1, res.CategoriesUpdated)

	assert.Equal(t, 0, cats.Get("l").Level)
	assert.Equal(t, 1, cats.Get("c").Level, "stored children follow their moved parent")
}

// R0 > R1 > R2 > R3 and MACHINES > LATHES > CNC.
func deepStore(t *testing.T, maxDepth int) (*categorytest.MemoryRepository, *Loader) {
	t.Helper()
	cats, _, l := newLoader(maxDepth)
	cats.Add("r0", "R0", "", 1)
	cats.Add("r1", "R1", "r0", 1)
	cats.Add("r2", "R2", "r1", 1)
	cats.Add("r3", "R3", "r2", 1)
	cats.Add("m", "MACHINES", "", 2)
	cats.Add("l", "LATHES", "m", 1)
	cats.Add("c", "CNC", "l", 1)
	return cats, l
}

func TestLoadKeepsStoredSubtreeWithinMaxDepth(t *testing.T) {
	cats, l := deepStore(t, 5)

	plan, res := load(t, l, `[{"category_code": "LATHES", "parent_category_code": "R3"}]`)
	assert.Empty(t, plan.Categories)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "LATHES")
	assert.Contains(t, plan.Warnings[0], "maximum depth")
	assert.Equal(t, Result{}, *res)

	assert.Equal(t, 1, cats.Get("l").Level)
	assert.Equal(t, "MACHINES", *cats.Get("l").ParentCode)
	assert.Equal(t, 2, cats.Get("c").Level)
}

func TestLoadSkipsRowsBelowASkippedMove(t *testing.T) {
	cats, l := deepStore(t, 6)
	cats.Add("c5", "CNC5AXIS", "c", 1)

	plan, _ := load(t, l, `[
		{"category_code": "LATHES", "parent_category_code": "R3"},
		{"category_code": "TURRET", "parent_category_code": "LATHES"}
	]`)
	assert.Empty(t, plan.Categories)
	require.Len(t, plan.Warnings, 2)
	assert.Contains(t, plan.Warnings[0], "LATHES")
	assert.Equal(t, "TURRET: ancestor LATHES was skipped, skipped", plan.Warnings[1])

	assert.Equal(t, 3, cats.Get("c5").Level)
	turret, err := cats.FindByCode(context.Background(), "TURRET")
	require.NoError(t, err)
	assert.Nil(t, turret)
}

func TestLoadMovesDeepRowWhenItsChildrenMoveToo(t *testing.T) {
	cats, l := deepStore(t, 5)

	plan, _ := load(t, l, `[
		{"category_code": "LATHES", "parent_category_code": "R3"},
		{"category_code": "CNC", "parent_category_code": "MACHINES"}
	]`)
	assert.Empty(t, plan.Warnings)
	assert.Equal(t, []string{"CNC", "LATHES"}, codes(plan))

	assert.Equal(t, 4, cats.Get("l").Level)
	assert.Equal(t, 1, cats.Get("c").Level)
	for _, c := range []string{"r0", "r1", "r2", "r3", "m", "l", "c"} {
		assert.Less(t, cats.Get(c).Level, 5, c)
	}
}

func TestDiffs(t *testing.T) {
	cats, schemas, l := newLoader(5)
	ctx := context.Background()
	cats.Add("m", "MACHINES", "", 1)
	cats.Add("p", "PUMPS", "m", 1)
	cats.Add("v", "VALVES", "m", 2)
	schemas.Put("p", true, model.FieldDefinition{Name: "flow", Label: "Flow", Type: model.FieldNumber, Order: 1})
	schemas.Put("v", true, model.FieldDefinition{Name: "size", Label: "size", Type: model.FieldText, Order: 1})

	records, _, err := Parse([]byte(`[
		{"category_code": "PUMPS", "parent_category_code": "MACHINES",
		 "category_fields_config": [{"field_id": "flow", "label": "Flow rate", "type": "INPUT", "is_number": true}]},
		{"category_code": "VALVES", "parent_category_code": "MACHINES",
		 "category_fields_config": [{"field_id": "size", "type": "INPUT"}]},
		{"category_code": "FANS", "parent_category_code": "MACHINES",
		 "category_fields_config": [{"field_id": "rpm", "type": "INPUT"}]}
	]`))
	require.NoError(t, err)
	plan, err := l.Plan(ctx, records)
	require.NoError(t, err)

	diffs, err := l.Diffs(ctx, plan)
	require.NoError(t, err)
	require.Len(t, diffs, 2, "unchanged VALVES schema is left out")

	byCode := map[string]SchemaDiff{}
	for _, d := range diffs {
		byCode[d.Code] = d
	}

	pumps := byCode["PUMPS"]
	assert.True(t, pumps.Stored)
	assert.Contains(t, pumps.Diff, "--- PUMPS (stored)")
	assert.Contains(t, pumps.Diff, `-    "field_label": "Flow",`)
	assert.Contains(t, pumps.Diff, `+    "field_label": "Flow rate",`)

	fans := byCode["FANS"]
	assert.False(t, fans.Stored)
	assert.Contains(t, fans.Diff, "--- /dev/null")
	assert.True(t, strings.Contains(fans.Diff, `+    "field_name": "rpm",`))
}
