package catalogload

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema"
	schemaUC "github.com/fekuna/omnipos-marketplace-service/internal/formschema/usecase"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
)

// Store writes a plan atomically.
type Store interface {
	Apply(ctx context.Context, plan *Plan) (*Result, error)
}

type Result struct {
	CategoriesCreated int `json:"categories_created"`
	CategoriesUpdated int `json:"categories_updated"`
	SchemasCreated    int `json:"schemas_created"`
	SchemasUpdated    int `json:"schemas_updated"`
}

func (r Result) String() string {
	return fmt.Sprintf("Categories: %d created, %d updated. Form schemas: %d created, %d updated.",
		r.CategoriesCreated, r.CategoriesUpdated, r.SchemasCreated, r.SchemasUpdated)
}

type Loader struct {
	categories Lookup
	schemas    formschema.Repository
	store      Store
	maxDepth   int
	logger     logger.ZapLogger
}

func NewLoader(categories Lookup, schemas formschema.Repository, store Store, maxDepth int, log logger.ZapLogger) *Loader {
	return &Loader{
		categories: categories,
		schemas:    schemas,
		store:      store,
		maxDepth:   maxDepth,
		logger:     log,
	}
}

// Plan resolves levels and parents against the store and normalizes every
// form schema. Rows whose schema is invalid keep their category update but
// leave the stored schema alone.
func (l *Loader) Plan(ctx context.Context, records []Record) (*Plan, error) {
	plan, err := newPlanner(l.categories, l.maxDepth).build(ctx, records)
	if err != nil {
		return nil, err
	}

	for i := range plan.Categories {
		pc := &plan.Categories[i]
		if !pc.HasForm {
			continue
		}
		fields, err := schemaUC.NormalizeFields(pc.Fields)
		if err != nil {
			msg := err.Error()
			if e, ok := apperror.As(err); ok && len(e.Fields) > 0 {
				msg = fmt.Sprint(e.Fields)
			}
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s: form schema skipped: %s", pc.Code, msg))
			continue
		}
		pc.Schema = fields
		pc.SchemaOK = true
	}

	for _, w := range plan.Warnings {
		l.logger.Warn("catalog load", zap.String("warning", w))
	}
	return plan, nil
}

func (l *Loader) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	res, err := l.store.Apply(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("apply catalog plan: %w", err)
	}
	l.logger.Info("catalog loaded",
		zap.Int("categories_created", res.CategoriesCreated),
		zap.Int("categories_updated", res.CategoriesUpdated),
		zap.Int("schemas_created", res.SchemasCreated),
		zap.Int("schemas_updated", res.SchemasUpdated),
	)
	return res, nil
}

// SchemaDiff is the unified diff between a stored schema and the one the
// plan would write. Stored is false for categories without a schema row.
type SchemaDiff struct {
	Code   string
	Stored bool
	Diff   string
}

// Diffs compares each planned schema with the stored one. Unchanged schemas
// are left out.
func (l *Loader) Diffs(ctx context.Context, plan *Plan) ([]SchemaDiff, error) {
	var out []SchemaDiff
	for _, pc := range plan.Categories {
		if !pc.SchemaOK {
			continue
		}

		var current model.FieldList
		stored := false
		if pc.Existing != nil {
			s, err := l.schemas.FindByCategoryID(ctx, pc.Existing.ID)
			if err != nil {
				return nil, fmt.Errorf("load schema of %s: %w", pc.Code, err)
			}
			if s != nil {
				current, stored = s.Fields, true
			}
		}

		diff, err := unified(pc.Code, stored, current, pc.Schema)
		if err != nil {
			return nil, err
		}
		if diff != "" {
			out = append(out, SchemaDiff{Code: pc.Code, Stored: stored, Diff: diff})
		}
	}
	return out, nil
}

func unified(code string, stored bool, a, b model.FieldList) (string, error) {
	from := "/dev/null"
	var before []string
	if stored {
		text, err := indent(a)
		if err != nil {
			return "", err
		}
		from, before = code+" (stored)", difflib.SplitLines(text)
	}
	after, err := indent(b)
	if err != nil {
		return "", err
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        before,
		B:        difflib.SplitLines(after),
		FromFile: from,
		ToFile:   code + " (dump)",
		Context:  3,
	})
}

func indent(fields model.FieldList) (string, error) {
	if fields == nil {
		fields = model.FieldList{}
	}
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
