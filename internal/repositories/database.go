package repository

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/stylemate/platform/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	_ "github.com/lib/pq"
)

type Repositories struct {
	DB *sql.DB

	User        UserRepository
	Product     ProductRepository
	Cart        CartRepository
	Appointment AppointmentRepository
	Coupon      CouponRepository
}

func New(cfg *config.Config) (*Repositories, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repositories{
		DB:          db,
		User:        NewUserRepo(db),
		Product:     NewProductRepo(db),
		Cart:        NewCartRepo(db),
		Appointment: NewAppointmentRepo(db),
		Coupon:      NewCouponRepo(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
