package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
)

var productColumns = []string{
	"id", "name", "gender", "category", "description",
	"price_cents", "discount_price_cents", "stock",
	"colors", "sizes", "images", "is_active", "created_at", "updated_at",
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Gender, &p.Category, &p.Description,
		&p.PriceCents, &p.DiscountPriceCents, &p.Stock,
		&p.Colors, &p.Sizes, &p.Images, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts возвращает активные товары, удовлетворяющие всем переданным
// фильтрам, от новых к старым. Условия по цвету и размеру объединяются
// через OR — поведение каталога сохранено как есть.
func (r *PostgresRepository) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	q := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("created_at DESC")

	switch filter.Gender {
	case "":
	case model.GenderMen:
		q = q.Where(squirrel.Eq{"gender": []string{string(model.GenderMen), string(model.GenderUnisex)}})
	case model.GenderWomen:
		q = q.Where(squirrel.Eq{"gender": []string{string(model.GenderWomen), string(model.GenderUnisex)}})
	default:
		q = q.Where(squirrel.Eq{"gender": string(filter.Gender)})
	}

	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}

	if filter.Query != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Query + "%"})
	}

	var colorSize squirrel.Or
	if filter.Color != "" {
		colorSize = append(colorSize,
			squirrel.Expr("? = ANY(colors)", filter.Color),
			squirrel.Expr("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.color = ?)", filter.Color),
		)
	}
	if filter.Size != "" {
		colorSize = append(colorSize,
			squirrel.Expr("? = ANY(sizes)", filter.Size),
			squirrel.Expr("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.size = ?)", filter.Size),
		)
	}
	if len(colorSize) > 0 {
		q = q.Where(colorSize)
	}

	if filter.MinPriceCents != nil {
		q = q.Where(squirrel.GtOrEq{"price_cents": *filter.MinPriceCents})
	}
	if filter.MaxPriceCents != nil {
		q = q.Where(squirrel.LtOrEq{"price_cents": *filter.MaxPriceCents})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build products query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	var ids []string
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
		ids = append(ids, p.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	variants, err := r.loadVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Variants = variants[products[i].ID]
	}

	return products, nil
}

// GetProductByID возвращает товар с вариантами независимо от признака активности.
func (r *PostgresRepository) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	sql, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product query: %w", err)
	}

	p, err := scanProduct(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	variants, err := r.loadVariants(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Variants = variants[p.ID]

	return p, nil
}

// GetProductsByIDs возвращает товары с вариантами по списку идентификаторов.
func (r *PostgresRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sql, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build products query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	variants, err := r.loadVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Variants = variants[products[i].ID]
	}

	return products, nil
}

func (r *PostgresRepository) loadVariants(ctx context.Context, productIDs []string) (map[string][]model.Variant, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT product_id, color, size, stock
		 FROM product_variants
		 WHERE product_id = ANY($1)
		 ORDER BY product_id, position`,
		productIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("select variants: %w", err)
	}
	defer rows.Close()

	res := make(map[string][]model.Variant)
	for rows.Next() {
		var productID string
		var v model.Variant
		if err := rows.Scan(&productID, &v.Color, &v.Size, &v.Stock); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		res[productID] = append(res[productID], v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// CreateProduct сохраняет новый товар вместе с вариантами.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO products
		     (id, name, gender, category, description, price_cents, discount_price_cents,
		      stock, colors, sizes, images, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Name, string(p.Gender), p.Category, p.Description,
		p.PriceCents, p.DiscountPriceCents,
		p.Stock, p.Colors, p.Sizes, p.Images, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	if err := insertVariants(ctx, tx, p.ID, p.Variants); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// UpdateProduct полностью перезаписывает товар и его варианты.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx,
		`UPDATE products
		 SET name = $2, gender = $3, category = $4, description = $5,
		     price_cents = $6, discount_price_cents = $7, stock = $8,
		     colors = $9, sizes = $10, images = $11, is_active = $12,
		     updated_at = now()
		 WHERE id = $1`,
		p.ID, p.Name, string(p.Gender), p.Category, p.Description,
		p.PriceCents, p.DiscountPriceCents, p.Stock,
		p.Colors, p.Sizes, p.Images, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete variants: %w", err)
	}

	if err := insertVariants(ctx, tx, p.ID, p.Variants); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// DeactivateProduct помечает товар неактивным, запись сохраняется.
func (r *PostgresRepository) DeactivateProduct(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func insertVariants(ctx context.Context, tx pgx.Tx, productID string, variants []model.Variant) error {
	for i, v := range variants {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_variants (product_id, color, size, stock, position)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (product_id, color, size) DO UPDATE SET stock = EXCLUDED.stock`,
			productID, v.Color, v.Size, v.Stock, i,
		)
		if err != nil {
			return fmt.Errorf("insert variant: %w", err)
		}
	}
	return nil
}
