package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/database"
	"github.com/fekuna/omnipos-assistant-service/internal/extract"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

const stockSelect = `
        SELECT p.id, p.sku, p.name, p.price, p.category, p.description, p.created_at, p.updated_at,
               COALESCE(i.quantity, 0) AS quantity,
               COALESCE(i.min_threshold, 0) AS min_threshold,
               COALESCE(i.max_threshold, 0) AS max_threshold,
               COALESCE(i.location, '') AS location
        FROM products p
        LEFT JOIN inventory i ON i.product_id = p.id`

// nameKey is what the unique name index compares: case and accents folded.
func nameKey(name string) string {
	return extract.Fold(strings.TrimSpace(name))
}

// likeEscaper makes the search text match literally under ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *SQLRepository) Create(ctx context.Context, p *model.Product, inv *model.InventoryRecord) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, tx.Rebind(`
        INSERT INTO products (sku, name, name_key, price, category, description, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id`),
		p.SKU, p.Name, nameKey(p.Name), p.Price, p.Category, p.Description, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return conflictOr(err, p)
	}

	inv.ProductID = p.ID
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
        INSERT INTO inventory (product_id, quantity, min_threshold, max_threshold, location, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id`),
		inv.ProductID, inv.Quantity, inv.MinThreshold, inv.MaxThreshold, inv.Location, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
        INSERT INTO inventory_movements (
            product_id, movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_at
        )
        VALUES (?, ?, ?, 0, ?, NULL, NULL, ?, ?)`),
		p.ID, string(model.MovementInitial), inv.Quantity, inv.Quantity, "initial stock", inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func conflictOr(err error, p *model.Product) error {
	if !database.IsUniqueViolation(err) {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "sku") {
		return &apperr.ConflictError{Entity: "product", Field: "sku", Value: p.SKU}
	}
	return &apperr.ConflictError{Entity: "product", Field: "name", Value: p.Name}
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*model.ProductStock, error) {
	var product model.ProductStock
	err := r.DB.GetContext(ctx, &product, r.DB.Rebind(stockSelect+` WHERE p.id = ? LIMIT 1`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.ProductStock, int, error) {
	if f == nil {
		f = &dto.ProductFilters{}
	}
	var products []model.ProductStock
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.SearchQuery != "" {
		conditions = append(conditions, `(lower(p.name) LIKE :search ESCAPE '\' OR lower(p.sku) LIKE :search ESCAPE '\')`)
		args["search"] = "%" + likeEscaper.Replace(strings.ToLower(f.SearchQuery)) + "%"
	}
	if f.Category != "" {
		conditions = append(conditions, "lower(p.category) = :category")
		args["category"] = strings.ToLower(f.Category)
	}
	if f.LowStock {
		conditions = append(conditions, "COALESCE(i.quantity, 0) <= 2 * COALESCE(i.min_threshold, 0)")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM products p LEFT JOIN inventory i ON i.product_id = p.id"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	orderBy := "p.id ASC"
	if f.SortBy != "" {
		// Whitelisted to keep user input out of the statement.
		switch f.SortBy {
		case "name":
			orderBy = "p.name"
		case "price":
			orderBy = "CAST(p.price AS REAL)"
		case "quantity":
			orderBy = "quantity"
		case "created_at":
			orderBy = "p.created_at"
		default:
			orderBy = "p.id"
		}
		if strings.ToLower(f.SortOrder) == "desc" {
			orderBy += " DESC"
		} else {
			orderBy += " ASC"
		}
	}

	query := fmt.Sprintf("%s%s ORDER BY %s", stockSelect, whereClause, orderBy)
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *SQLRepository) Update(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
        UPDATE products
        SET sku = ?, name = ?, name_key = ?, price = ?, category = ?, description = ?, updated_at = ?
        WHERE id = ?`),
		p.SKU, p.Name, nameKey(p.Name), p.Price, p.Category, p.Description, p.UpdatedAt, p.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return conflictOr(err, p)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &apperr.NotFoundError{Entity: "product", Ref: fmt.Sprintf("%d", p.ID)}
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, id int64, cascade bool) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var orderIDs []int64
	if err := tx.SelectContext(ctx, &orderIDs, tx.Rebind(`SELECT DISTINCT order_id FROM order_items WHERE product_id = ?`), id); err != nil {
		return fmt.Errorf("failed to check order references: %w", err)
	}

	if len(orderIDs) > 0 {
		if !cascade {
			return &apperr.ConflictError{Entity: "product", Field: "orders", Value: fmt.Sprintf("%d referencing orders", len(orderIDs))}
		}
		for _, stmt := range []string{
			`DELETE FROM order_items WHERE order_id IN (?)`,
			`DELETE FROM orders WHERE id IN (?)`,
		} {
			q, args, err := sqlx.In(stmt, orderIDs)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
				return fmt.Errorf("failed to cascade delete orders: %w", err)
			}
		}
	}

	for _, stmt := range []string{
		`DELETE FROM inventory_movements WHERE product_id = ?`,
		`DELETE FROM inventory WHERE product_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return fmt.Errorf("failed to delete product stock: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return &apperr.NotFoundError{Entity: "product", Ref: fmt.Sprintf("%d", id)}
	}

	return tx.Commit()
}

func (r *SQLRepository) IsSKUUnique(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var count int
	query := `SELECT count(*) FROM products WHERE lower(sku) = lower(?)`
	args := []interface{}{sku}
	if excludeID > 0 {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}

	err := r.DB.GetContext(ctx, &count, r.DB.Rebind(query), args...)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
