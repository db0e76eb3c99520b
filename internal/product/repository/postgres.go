package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Specification keys the listing filters read.
const (
	SpecConditionKey = "condition"
	SpecYearKey      = "year"
)

const selectSummary = `
	SELECT p.id, p.name, p.code, p.description, c.code AS category_code, p.seller_id, p.tag,
	       p.price, p.currency, p.availability, l.state, l.district, p.created_at
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN locations l ON l.id = p.location_id`

const countSummary = `
	SELECT count(*)
	FROM products p
	LEFT JOIN locations l ON l.id = p.location_id`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sellers (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, p.SellerID); err != nil {
		return fmt.Errorf("ensure seller: %w", err)
	}

	if p.Location != nil {
		loc := p.Location
		if loc.ID == "" {
			loc.ID = uuid.New().String()
		}
		err := tx.GetContext(ctx, &loc.ID, `
            INSERT INTO locations (id, state, district) VALUES ($1, $2, $3)
            ON CONFLICT (state, district) DO UPDATE SET state = EXCLUDED.state
            RETURNING id`, loc.ID, loc.State, loc.District)
		if err != nil {
			return fmt.Errorf("upsert location: %w", err)
		}
		p.LocationID = &loc.ID
	}

	query := `
        INSERT INTO products (
            id, name, code, description, category_id, seller_id, location_id, tag,
            price, currency, availability, is_active, created_at, updated_at
        )
        VALUES (
            :id, :name, :code, :description, :category_id, :seller_id, :location_id, :tag,
            :price, :currency, :availability, :is_active, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	for i := range p.Specs {
		s := &p.Specs[i]
		s.ProductID = p.ID
		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO product_specifications (id, product_id, key, value)
            VALUES (:id, :product_id, :key, :value)`, s); err != nil {
			return fmt.Errorf("insert specification %s: %w", s.Key, err)
		}
	}

	for i := range p.Images {
		img := &p.Images[i]
		img.ProductID = p.ID
		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO product_images (id, product_id, image_url, sort_order)
            VALUES (:id, :product_id, :image_url, :sort_order)`, img); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE code = $1)`, code)
	return exists, err
}

func (r *PGRepository) ListForIndex(ctx context.Context, afterID string, limit int) ([]model.Product, error) {
	query := `
        SELECT id, name, code, description, category_id, seller_id, location_id, tag,
               price, currency, availability, is_active, created_at, updated_at
        FROM products
        WHERE is_active = TRUE AND ($1 = '' OR id::text > $1)
        ORDER BY id::text
        LIMIT $2`
	var products []model.Product
	if err := r.DB.SelectContext(ctx, &products, query, afterID, limit); err != nil {
		return nil, err
	}
	return products, nil
}

type productRow struct {
	model.Product
	CategoryCode string  `db:"category_code"`
	CategoryName string  `db:"category_name"`
	State        *string `db:"state"`
	District     *string `db:"district"`
}

func (r *PGRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var row productRow
	query := `
        SELECT p.id, p.name, p.code, p.description, p.category_id, p.seller_id, p.location_id, p.tag,
               p.price, p.currency, p.availability, p.is_active, p.created_at, p.updated_at,
               c.code AS category_code, c.name AS category_name, l.state, l.district
        FROM products p
        JOIN categories c ON c.id = p.category_id
        LEFT JOIN locations l ON l.id = p.location_id
        WHERE p.code = $1 AND p.is_active = TRUE
        LIMIT 1`
	err := r.DB.GetContext(ctx, &row, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p := row.Product
	p.Category = &model.Category{
		BaseModel: model.BaseModel{ID: p.CategoryID},
		Code:      row.CategoryCode,
		Name:      row.CategoryName,
		IsActive:  true,
	}
	if p.LocationID != nil && row.State != nil {
		p.Location = &model.Location{ID: *p.LocationID, State: *row.State}
		if row.District != nil {
			p.Location.District = *row.District
		}
	}

	if err := r.DB.SelectContext(ctx, &p.Specs, `
        SELECT id, product_id, key, value FROM product_specifications
        WHERE product_id = $1 ORDER BY key`, p.ID); err != nil {
		return nil, fmt.Errorf("load specifications: %w", err)
	}
	if err := r.DB.SelectContext(ctx, &p.Images, `
        SELECT id, product_id, image_url, sort_order FROM product_images
        WHERE product_id = $1 ORDER BY sort_order, id`, p.ID); err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	return &p, nil
}

func (r *PGRepository) Search(ctx context.Context, f *dto.SearchFilters) ([]model.ProductSummary, int, error) {
	where, args := buildSearchQuery(f)

	var count int
	if err := r.namedGet(ctx, &count, countSummary+where, args); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT %d OFFSET %d",
		selectSummary, where, orderBy(f.Sort), f.Limit, f.Offset)

	var products []model.ProductSummary
	if err := r.namedSelect(ctx, &products, query, args); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if err := r.attachDetails(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

// attachDetails loads specifications and image URLs for one page of results.
func (r *PGRepository) attachDetails(ctx context.Context, products []model.ProductSummary) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].Specifications = map[string]string{}
		products[i].ImageURLs = []string{}
	}

	var specs []model.ProductSpec
	q, args, err := sqlx.In(`SELECT id, product_id, key, value FROM product_specifications WHERE product_id IN (?)`, ids)
	if err != nil {
		return err
	}
	if err := r.DB.SelectContext(ctx, &specs, r.DB.Rebind(q), args...); err != nil {
		return fmt.Errorf("load specifications: %w", err)
	}
	for _, s := range specs {
		products[index[s.ProductID]].Specifications[s.Key] = s.Value
	}

	var images []model.ProductImage
	q, args, err = sqlx.In(`SELECT id, product_id, image_url, sort_order FROM product_images WHERE product_id IN (?) ORDER BY sort_order, id`, ids)
	if err != nil {
		return err
	}
	if err := r.DB.SelectContext(ctx, &images, r.DB.Rebind(q), args...); err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	for _, img := range images {
		i := index[img.ProductID]
		products[i].ImageURLs = append(products[i].ImageURLs, img.ImageURL)
	}
	return nil
}

func (r *PGRepository) namedGet(ctx context.Context, dest interface{}, query string, args map[string]interface{}) error {
	q, params, err := r.expand(query, args)
	if err != nil {
		return err
	}
	return r.DB.GetContext(ctx, dest, q, params...)
}

func (r *PGRepository) namedSelect(ctx context.Context, dest interface{}, query string, args map[string]interface{}) error {
	q, params, err := r.expand(query, args)
	if err != nil {
		return err
	}
	return r.DB.SelectContext(ctx, dest, q, params...)
}

// expand binds named args and spreads slice args for IN clauses.
func (r *PGRepository) expand(query string, args map[string]interface{}) (string, []interface{}, error) {
	q, params, err := sqlx.Named(query, args)
	if err != nil {
		return "", nil, err
	}
	q, params, err = sqlx.In(q, params...)
	if err != nil {
		return "", nil, err
	}
	return r.DB.Rebind(q), params, nil
}

// buildSearchQuery turns filters into a WHERE clause over products p and
// locations l plus its named arguments.
func buildSearchQuery(f *dto.SearchFilters) (string, map[string]interface{}) {
	conditions := []string{"p.is_active = TRUE"}
	args := map[string]interface{}{}

	if len(f.CategoryIDs) > 0 {
		conditions = append(conditions, "p.category_id IN (:category_ids)")
		args["category_ids"] = f.CategoryIDs
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "p.price >= :min_price")
		args["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "p.price <= :max_price")
		args["max_price"] = *f.MaxPrice
	}
	if f.Condition != "" {
		conditions = append(conditions, `EXISTS (
            SELECT 1 FROM product_specifications cs
            WHERE cs.product_id = p.id AND cs.key = :condition_key AND cs.value = :condition)`)
		args["condition_key"] = SpecConditionKey
		args["condition"] = f.Condition
	}
	if f.YearFrom != nil || f.YearTo != nil {
		// Values that are not plain integers never match a year range.
		year := `(CASE WHEN ys.value ~ '^\s*[0-9]{1,9}\s*$' THEN CAST(TRIM(ys.value) AS INTEGER) END)`
		bounds := []string{}
		if f.YearFrom != nil {
			bounds = append(bounds, year+" >= :year_from")
			args["year_from"] = *f.YearFrom
		}
		if f.YearTo != nil {
			bounds = append(bounds, year+" <= :year_to")
			args["year_to"] = *f.YearTo
		}
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM product_specifications ys
            WHERE ys.product_id = p.id AND ys.key = :year_key AND %s)`, strings.Join(bounds, " AND ")))
		args["year_key"] = SpecYearKey
	}
	if f.State != "" {
		conditions = append(conditions, "LOWER(l.state) = LOWER(:state)")
		args["state"] = f.State
	}
	if f.District != "" {
		conditions = append(conditions, "LOWER(l.district) = LOWER(:district)")
		args["district"] = f.District
	}
	if f.LocationSearch != "" {
		conditions = append(conditions, "(l.state ILIKE :location_search OR l.district ILIKE :location_search)")
		args["location_search"] = containsPattern(f.LocationSearch)
	}
	switch {
	case f.TextMatched && len(f.MatchedIDs) == 0:
		conditions = append(conditions, "FALSE")
	case f.TextMatched:
		conditions = append(conditions, "p.id IN (:matched_ids)")
		args["matched_ids"] = f.MatchedIDs
	case f.Search != "":
		conditions = append(conditions, "(p.name ILIKE :search OR p.description ILIKE :search)")
		args["search"] = containsPattern(f.Search)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// orderBy breaks ties on creation time so pages stay stable.
func orderBy(sort dto.SortOrder) string {
	switch sort {
	case dto.SortPriceAsc:
		return "p.price ASC NULLS LAST, p.created_at DESC, p.id"
	case dto.SortPriceDesc:
		return "p.price DESC NULLS LAST, p.created_at DESC, p.id"
	default:
		return "p.created_at DESC, p.id"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
