package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/database"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

const customerColumns = `id, name, email, phone, created_at, updated_at`

// maxEmailVariants bounds the suffixes tried for a synthesized address.
const maxEmailVariants = 100

// InsertTx creates c inside tx. A taken address is replaced by the first free
// variant with a numeric suffix, so obrien@example.com becomes obrien.2@example.com.
// Availability is checked before the insert since a failed statement aborts a
// Postgres transaction.
func InsertTx(ctx context.Context, tx *sqlx.Tx, c *model.Customer) error {
	if c.Email != nil {
		email, err := freeEmail(ctx, tx, *c.Email)
		if err != nil {
			return err
		}
		c.Email = &email
	}
	err := tx.QueryRowxContext(ctx, tx.Rebind(`
        INSERT INTO customers (name, email, phone, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        RETURNING id`),
		c.Name, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if database.IsUniqueViolation(err) && c.Email != nil {
			return &apperr.ConflictError{Entity: "customer", Field: "email", Value: *c.Email}
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func freeEmail(ctx context.Context, tx *sqlx.Tx, email string) (string, error) {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		local, domain = email, ""
	}
	candidate := email
	for n := 2; ; n++ {
		var taken int
		if err := tx.GetContext(ctx, &taken, tx.Rebind(`SELECT COUNT(*) FROM customers WHERE email = ?`), candidate); err != nil {
			return "", fmt.Errorf("failed to check customer email: %w", err)
		}
		if taken == 0 {
			return candidate, nil
		}
		if n > maxEmailVariants {
			return "", &apperr.ConflictError{Entity: "customer", Field: "email", Value: email}
		}
		candidate = fmt.Sprintf("%s.%d", local, n)
		if ok {
			candidate += "@" + domain
		}
	}
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	var c model.Customer
	err := r.DB.GetContext(ctx, &c, r.DB.Rebind(`SELECT `+customerColumns+` FROM customers WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *SQLRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.DB.SelectContext(ctx, &customers, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	return customers, err
}
