package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/stylemate/platform/internal/models"
	"github.com/stylemate/platform/internal/utils"
)

type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type couponRepository struct {
	DB *sql.DB
}

func NewCouponRepo(db *sql.DB) CouponRepository {
	return &couponRepository{DB: db}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, code, percent_off, active, expires_at
		FROM coupons
		WHERE code = $1
	`

	coupon := &models.Coupon{}

	err := r.DB.QueryRowContext(dbCtx, query, strings.ToUpper(code)).Scan(
		&coupon.ID, &coupon.Code, &coupon.PercentOff, &coupon.Active, &coupon.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return coupon, nil
}
