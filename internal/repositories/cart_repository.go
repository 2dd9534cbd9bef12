package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/models"
	"github.com/stylemate/platform/internal/utils"
)

type CartRepository interface {
	GetItems(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error)
	GetItem(ctx context.Context, itemID, customerID uuid.UUID) (*models.CartItem, error)
	GetItemByProduct(ctx context.Context, customerID, productID uuid.UUID) (*models.CartItem, error)
	Upsert(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*models.CartItem, error)
	SetQuantity(ctx context.Context, itemID, customerID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID, customerID uuid.UUID) error
	DeleteAll(ctx context.Context, customerID uuid.UUID) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

// Every read joins products so quantity decisions always see the current
// stock ceiling and availability flag.
const cartItemColumns = `
	ci.id, ci.product_id, p.name, p.image, ci.variant_id, ci.variant_value,
	ci.quantity, p.price, ci.quantity * p.price, p.stock, p.available, p.salon_id
`

func (r *cartRepository) GetItems(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.customer_id = $1
		ORDER BY ci.created_at
	`

	rows, err := r.DB.QueryContext(dbCtx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem

	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

func (r *cartRepository) GetItem(ctx context.Context, itemID, customerID uuid.UUID) (*models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.id = $1 AND ci.customer_id = $2
	`

	return scanCartItemRow(r.DB.QueryRowContext(dbCtx, query, itemID, customerID))
}

func (r *cartRepository) GetItemByProduct(ctx context.Context, customerID, productID uuid.UUID) (*models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.customer_id = $1 AND ci.product_id = $2
	`

	return scanCartItemRow(r.DB.QueryRowContext(dbCtx, query, customerID, productID))
}

// Upsert inserts a line for the product or replaces the existing line's
// quantity with the given absolute value. One line per (customer, product).
func (r *cartRepository) Upsert(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO cart_items (id, customer_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (customer_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
		RETURNING id
	`

	var itemID uuid.UUID

	err := r.DB.QueryRowContext(dbCtx, query, uuid.New(), customerID, productID, quantity).Scan(&itemID)
	if err != nil {
		return nil, fmt.Errorf("upserting cart item: %w", err)
	}

	return r.GetItem(ctx, itemID, customerID)
}

func (r *cartRepository) SetQuantity(ctx context.Context, itemID, customerID uuid.UUID, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND customer_id = $3
	`, quantity, itemID, customerID)
	if err != nil {
		return fmt.Errorf("updating cart item quantity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID, customerID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		DELETE FROM cart_items WHERE id = $1 AND customer_id = $2
	`, itemID, customerID)
	if err != nil {
		return fmt.Errorf("deleting cart item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *cartRepository) DeleteAll(ctx context.Context, customerID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := r.DB.ExecContext(dbCtx, `
		DELETE FROM cart_items WHERE customer_id = $1
	`, customerID)
	if err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}

	return nil
}

func scanCartItemRow(row *sql.Row) (*models.CartItem, error) {
	item := &models.CartItem{}

	err := row.Scan(
		&item.ID, &item.ProductID, &item.ProductName, &item.ProductImage,
		&item.VariantID, &item.VariantValue, &item.Quantity, &item.UnitPrice,
		&item.TotalPrice, &item.Stock, &item.Available, &item.SalonID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return item, nil
}

func scanCartItem(rows *sql.Rows) (*models.CartItem, error) {
	item := &models.CartItem{}

	err := rows.Scan(
		&item.ID, &item.ProductID, &item.ProductName, &item.ProductImage,
		&item.VariantID, &item.VariantValue, &item.Quantity, &item.UnitPrice,
		&item.TotalPrice, &item.Stock, &item.Available, &item.SalonID,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning cart item: %w", err)
	}

	return item, nil
}
