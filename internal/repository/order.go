package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
)

// StockDecrement описывает списание остатка по одной позиции заказа.
type StockDecrement struct {
	ProductID   string
	ProductName string
	Color       string
	Size        string
	Quantity    int64
	// FromVariant указывает, что списание идёт с точного варианта
	// {color, size}, а не с общего остатка товара.
	FromVariant bool
}

// CreateOrder атомарно сохраняет заказ и списывает остатки. Каждое списание
// выполняется условным UPDATE с охраной stock >= quantity: при нехватке
// остатка вся транзакция откатывается и ни одна позиция не списывается.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *model.Order, decs []StockDecrement) error {
	return r.withRetry(ctx, func() error {
		return r.createOrderTx(ctx, order, decs)
	})
}

func (r *PostgresRepository) createOrderTx(ctx context.Context, order *model.Order, decs []StockDecrement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, dec := range decs {
		if err := applyDecrement(ctx, tx, dec); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, items, shipping_address, payment_method, total_cents, is_paid, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		order.ID, order.Items, order.ShippingAddress, string(order.PaymentMethod),
		order.TotalCents, order.IsPaid, string(order.Status),
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func applyDecrement(ctx context.Context, tx pgx.Tx, dec StockDecrement) error {
	if dec.FromVariant {
		cmdTag, err := tx.Exec(ctx,
			`UPDATE product_variants
			 SET stock = stock - $4
			 WHERE product_id = $1 AND color = $2 AND size = $3 AND stock >= $4`,
			dec.ProductID, dec.Color, dec.Size, dec.Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement variant stock: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return variantStockError(ctx, tx, dec)
		}

		// Совокупный остаток пересчитывается из вариантов в той же транзакции.
		_, err = tx.Exec(ctx,
			`UPDATE products
			 SET stock = (SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id = $1),
			     updated_at = now()
			 WHERE id = $1`,
			dec.ProductID,
		)
		if err != nil {
			return fmt.Errorf("sync product stock: %w", err)
		}

		return nil
	}

	cmdTag, err := tx.Exec(ctx,
		`UPDATE products
		 SET stock = stock - $2, updated_at = now()
		 WHERE id = $1 AND stock >= $2`,
		dec.ProductID, dec.Quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement product stock: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		var available int64
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, dec.ProductID).Scan(&available)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("select product stock: %w", err)
		}
		return &InsufficientStockError{
			ProductName: dec.ProductName,
			Available:   available,
		}
	}

	return nil
}

func variantStockError(ctx context.Context, tx pgx.Tx, dec StockDecrement) error {
	var available int64
	err := tx.QueryRow(ctx,
		`SELECT stock FROM product_variants WHERE product_id = $1 AND color = $2 AND size = $3`,
		dec.ProductID, dec.Color, dec.Size,
	).Scan(&available)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("select variant stock: %w", err)
	}
	return &InsufficientStockError{
		ProductName: dec.ProductName,
		Color:       dec.Color,
		Size:        dec.Size,
		Available:   available,
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var paymentMethod, status string
	err := row.Scan(
		&o.ID, &o.Items, &o.ShippingAddress, &paymentMethod,
		&o.TotalCents, &o.IsPaid, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.PaymentMethod = model.PaymentMethod(paymentMethod)
	o.Status = model.OrderStatus(status)
	return &o, nil
}

const orderColumns = `id, items, shipping_address, payment_method, total_cents, is_paid, status, created_at, updated_at`

// ListOrders возвращает все заказы от новых к старым.
func (r *PostgresRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// GetOrderByID возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetOrderByShortID возвращает самый свежий заказ, идентификатор которого
// оканчивается на указанный суффикс. Суффикс сравнивается буквально:
// сравнение через right не даёт символам % и _ работать шаблонами LIKE.
func (r *PostgresRepository) GetOrderByShortID(ctx context.Context, shortID string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE right(id, char_length($1)) = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		shortID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by short id: %w", err)
	}
	return o, nil
}

// UpdateOrderState сохраняет статус и признак оплаты заказа.
func (r *PostgresRepository) UpdateOrderState(ctx context.Context, id string, status model.OrderStatus, isPaid bool) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`UPDATE orders
		 SET status = $2, is_paid = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+orderColumns,
		id, string(status), isPaid,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order: %w", err)
	}
	return o, nil
}
