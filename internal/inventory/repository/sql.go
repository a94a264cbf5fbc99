package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/inventory"
	"github.com/fekuna/omnipos-assistant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB  *sqlx.DB
	now func() time.Time
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db, now: time.Now}
}

const inventoryColumns = `id, product_id, quantity, min_threshold, max_threshold, location, updated_at`

func (r *SQLRepository) GetByProduct(ctx context.Context, productID int64) (*model.InventoryRecord, error) {
	var inv model.InventoryRecord
	err := r.DB.GetContext(ctx, &inv, r.DB.Rebind(`SELECT `+inventoryColumns+` FROM inventory WHERE product_id = ?`), productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *SQLRepository) Summary(ctx context.Context) (*dto.Summary, error) {
	var s dto.Summary
	err := r.DB.GetContext(ctx, &s, `
        SELECT count(p.id) AS total_products,
               COALESCE(SUM(COALESCE(i.quantity, 0)), 0) AS total_units,
               COALESCE(SUM(CASE WHEN COALESCE(i.quantity, 0) <= 2 * COALESCE(i.min_threshold, 0) THEN 1 ELSE 0 END), 0) AS low_stock,
               COALESCE(SUM(CASE WHEN COALESCE(i.quantity, 0) = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock
        FROM products p
        LEFT JOIN inventory i ON i.product_id = p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize inventory: %w", err)
	}
	return &s, nil
}

func (r *SQLRepository) SetLevels(ctx context.Context, in *dto.SetLevelsInput) (*model.InventoryRecord, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var inv model.InventoryRecord
	err = tx.GetContext(ctx, &inv, tx.Rebind(`SELECT `+inventoryColumns+` FROM inventory WHERE product_id = ?`), in.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if inv.Quantity != in.ExpectedQuantity {
		return nil, inventory.ErrStaleQuantity
	}

	before := inv.Quantity
	if in.Quantity != nil {
		inv.Quantity = *in.Quantity
	}
	if in.MinThreshold != nil {
		inv.MinThreshold = *in.MinThreshold
	}
	if in.MaxThreshold != nil {
		inv.MaxThreshold = *in.MaxThreshold
	}
	inv.UpdatedAt = r.now()

	// Conditional on the quantity read above; zero rows means a concurrent sale won.
	res, err := tx.ExecContext(ctx, tx.Rebind(`
        UPDATE inventory
        SET quantity = ?, min_threshold = ?, max_threshold = ?, updated_at = ?
        WHERE product_id = ? AND quantity = ?`),
		inv.Quantity, inv.MinThreshold, inv.MaxThreshold, inv.UpdatedAt, in.ProductID, before,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, inventory.ErrStaleQuantity
	}

	if inv.Quantity != before {
		movement := &model.InventoryMovement{
			ProductID:      in.ProductID,
			MovementType:   model.MovementAdjustment,
			QuantityChange: inv.Quantity - before,
			QuantityBefore: before,
			QuantityAfter:  inv.Quantity,
			Notes:          in.Reason,
			CreatedAt:      inv.UpdatedAt,
		}
		if in.ReferenceType != "" {
			movement.ReferenceType = &in.ReferenceType
		}
		if in.ReferenceID != "" {
			movement.ReferenceID = &in.ReferenceID
		}
		if err := LogMovement(ctx, tx, movement); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &inv, nil
}

// LogMovement writes an audit row inside the caller's transaction.
func LogMovement(ctx context.Context, tx *sqlx.Tx, m *model.InventoryMovement) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
        INSERT INTO inventory_movements (
            product_id, movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_at
        )
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ProductID, string(m.MovementType), m.QuantityChange, m.QuantityBefore, m.QuantityAfter,
		m.ReferenceType, m.ReferenceID, m.Notes, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	if f == nil {
		f = &dto.MovementFilters{}
	}
	var items []model.InventoryMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID > 0 {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM inventory_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	err = r.DB.SelectContext(ctx, &items, r.DB.Rebind(listQuery), listArgs...)
	return items, count, err
}
