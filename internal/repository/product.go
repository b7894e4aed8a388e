package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/storage/db"
)

type CreateProductParams struct {
	Name                 string
	Description          string
	Price                float64
	Stock                int
	ImageURL             string
	Category             string
	Customizable         bool
	CustomizationOptions json.RawMessage
}

// UpdateProductParams carries a merge-patch: nil fields are left untouched.
type UpdateProductParams struct {
	Name                 *string
	Description          *string
	Price                *float64
	Stock                *int
	ImageURL             *string
	Category             *string
	Customizable         *bool
	CustomizationOptions json.RawMessage
	UpdatedAt            time.Time
}

type ListProductsParams struct {
	Category  string
	Search    string
	SortBy    string
	SortOrder string
	Skip      int
	Limit     int
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) (model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, stock, image_url, category,
	customizable, customization_options, created_at, updated_at`

type productRow struct {
	ID                   int64          `db:"id"`
	Name                 string         `db:"name"`
	Description          string         `db:"description"`
	Price                pgtype.Numeric `db:"price"`
	Stock                int32          `db:"stock"`
	ImageURL             string         `db:"image_url"`
	Category             string         `db:"category"`
	Customizable         bool           `db:"customizable"`
	CustomizationOptions []byte         `db:"customization_options"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (r productRepository) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	price, err := numericPrice(params.Price)
	if err != nil {
		return model.Product{}, err
	}

	if params.Stock > math.MaxInt32 || params.Stock < math.MinInt32 {
		return model.Product{}, fmt.Errorf("stock out of range: %d", params.Stock)
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO products (name, description, price, stock, image_url, category,
			customizable, customization_options)
		VALUES (@name, @description, @price, @stock, @image_url, @category,
			@customizable, @customization_options)
		RETURNING `+productColumns+`;
	`, pgx.NamedArgs{
		"name":                  params.Name,
		"description":           params.Description,
		"price":                 price,
		"stock":                 int32(params.Stock),
		"image_url":             params.ImageURL,
		"category":              params.Category,
		"customizable":          params.Customizable,
		"customization_options": customizationOptionsArg(params.CustomizationOptions),
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return model.Product{}, fmt.Errorf("collect created product: %w", err)
	}

	return productRowToModel(row)
}

func (r productRepository) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = @id;
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("collect product: %w", err)
	}

	return productRowToModel(row)
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	query, args := buildListProductsQuery(params)

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		product, err := productRowToModel(row)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

// buildListProductsQuery composes the catalog query in a fixed order:
// category filter, then search filter, then sort, then offset, then limit.
// The search term matches name or description, case-insensitively.
func buildListProductsQuery(params ListProductsParams) (string, pgx.NamedArgs) {
	var sb strings.Builder
	args := pgx.NamedArgs{}

	sb.WriteString("SELECT " + productColumns + "\nFROM products")

	var conditions []string
	if params.Category != "" {
		conditions = append(conditions, "category = @category")
		args["category"] = params.Category
	}
	if params.Search != "" {
		conditions = append(conditions, "(name ILIKE @search OR description ILIKE @search)")
		args["search"] = "%" + params.Search + "%"
	}
	if len(conditions) > 0 {
		sb.WriteString("\nWHERE " + strings.Join(conditions, " AND "))
	}

	sb.WriteString("\nORDER BY " + sortColumn(params.SortBy) + " " + sortDirection(params.SortOrder))

	sb.WriteString("\nOFFSET @skip LIMIT @limit;")
	args["skip"] = params.Skip
	args["limit"] = params.Limit

	return sb.String(), args
}

// sortColumn whitelists sortable columns; anything else silently falls
// back to id.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "id", "name", "price", "created_at":
		return sortBy
	default:
		return "id"
	}
}

func sortDirection(sortOrder string) string {
	if strings.EqualFold(sortOrder, "desc") {
		return "DESC"
	}
	return "ASC"
}

func (r productRepository) UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error) {
	var price any
	if params.Price != nil {
		n, err := numericPrice(*params.Price)
		if err != nil {
			return model.Product{}, err
		}
		price = n
	}

	var stock *int32
	if params.Stock != nil {
		if *params.Stock > math.MaxInt32 || *params.Stock < math.MinInt32 {
			return model.Product{}, fmt.Errorf("stock out of range: %d", *params.Stock)
		}
		v := int32(*params.Stock)
		stock = &v
	}

	rows, err := r.db.Query(ctx, `
		UPDATE products
		SET
			name                  = COALESCE(@name, name),
			description           = COALESCE(@description, description),
			price                 = COALESCE(@price, price),
			stock                 = COALESCE(@stock, stock),
			image_url             = COALESCE(@image_url, image_url),
			category              = COALESCE(@category, category),
			customizable          = COALESCE(@customizable, customizable),
			customization_options = COALESCE(@customization_options, customization_options),
			updated_at            = @updated_at
		WHERE id = @id
		RETURNING `+productColumns+`;
	`, pgx.NamedArgs{
		"id":                    id,
		"name":                  params.Name,
		"description":           params.Description,
		"price":                 price,
		"stock":                 stock,
		"image_url":             params.ImageURL,
		"category":              params.Category,
		"customizable":          params.Customizable,
		"customization_options": customizationOptionsArg(params.CustomizationOptions),
		"updated_at":            params.UpdatedAt,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("collect updated product: %w", err)
	}

	return productRowToModel(row)
}

func (r productRepository) DeleteProduct(ctx context.Context, id int64) (model.Product, error) {
	rows, err := r.db.Query(ctx, `
		DELETE FROM products
		WHERE id = @id
		RETURNING `+productColumns+`;
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, fmt.Errorf("delete product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("collect deleted product: %w", err)
	}

	return productRowToModel(row)
}

// customizationOptionsArg maps an absent payload to SQL NULL so that the
// COALESCE merge leaves the stored value untouched.
func customizationOptionsArg(opts json.RawMessage) any {
	if len(opts) == 0 {
		return nil
	}
	return opts
}

func numericPrice(price float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(fmt.Sprintf("%.2f", price)); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan price: %w", err)
	}
	return n, nil
}

func productRowToModel(row productRow) (model.Product, error) {
	price, err := row.Price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}

	return model.Product{
		Base: model.Base{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
		Name:                 row.Name,
		Description:          row.Description,
		Price:                price.Float64,
		Stock:                int(row.Stock),
		ImageURL:             row.ImageURL,
		Category:             row.Category,
		Customizable:         row.Customizable,
		CustomizationOptions: json.RawMessage(row.CustomizationOptions),
	}, nil
}
