package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	custRepo "github.com/fekuna/omnipos-assistant-service/internal/customer/repository"
	invRepo "github.com/fekuna/omnipos-assistant-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/order/dto"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type SQLRepository struct {
	DB  *sqlx.DB
	now func() time.Time
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db, now: time.Now}
}

const orderSelect = `
        SELECT o.id, o.customer_id, COALESCE(c.name, '') AS customer_name, o.status, o.payment_method,
               o.total_amount, o.order_date, o.updated_at
        FROM orders o
        LEFT JOIN customers c ON c.id = o.customer_id`

const lineSelect = `
        SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, '') AS product_name,
               oi.quantity, oi.unit_price, oi.line_total
        FROM order_items oi
        LEFT JOIN products p ON p.id = oi.product_id`

type indexedLine struct {
	idx int
	dto.LineRequest
}

func (r *SQLRepository) CreateAtomic(ctx context.Context, in *dto.CreateOrderInput) (*dto.Receipt, error) {
	if len(in.Lines) == 0 {
		return nil, apperr.Validation("items", "an order needs at least one line")
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, apperr.Validation("quantity", "line quantities must be greater than zero")
		}
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var customerName string
	if in.NewCustomer != nil {
		if err := custRepo.InsertTx(ctx, tx, in.NewCustomer); err != nil {
			return nil, err
		}
		in.CustomerID, customerName = in.NewCustomer.ID, in.NewCustomer.Name
	} else {
		err = tx.GetContext(ctx, &customerName, tx.Rebind(`SELECT name FROM customers WHERE id = ?`), in.CustomerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &apperr.NotFoundError{Entity: "customer", Ref: strconv.FormatInt(in.CustomerID, 10)}
			}
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
	}

	// Rows are locked in product id order so concurrent orders cannot deadlock.
	ordered := make([]indexedLine, len(in.Lines))
	for i, l := range in.Lines {
		ordered[i] = indexedLine{idx: i, LineRequest: l}
	}
	slices.SortStableFunc(ordered, func(a, b indexedLine) int {
		switch {
		case a.ProductID < b.ProductID:
			return -1
		case a.ProductID > b.ProductID:
			return 1
		}
		return 0
	})

	now := r.now()
	receipts := make([]dto.LineReceipt, len(in.Lines))
	lineErrs := make([]error, len(in.Lines))
	failed := false

	for _, l := range ordered {
		var product struct {
			Name  string          `db:"name"`
			Price decimal.Decimal `db:"price"`
		}
		err := tx.GetContext(ctx, &product, tx.Rebind(`SELECT name, price FROM products WHERE id = ?`), l.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			lineErrs[l.idx] = &apperr.NotFoundError{Entity: "product", Ref: strconv.FormatInt(l.ProductID, 10)}
			failed = true
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		// The stock check and the decrement are one statement.
		var after int
		err = tx.QueryRowxContext(ctx, tx.Rebind(`
            UPDATE inventory
            SET quantity = quantity - ?, updated_at = ?
            WHERE product_id = ? AND quantity >= ?
            RETURNING quantity`),
			l.Quantity, now, l.ProductID, l.Quantity,
		).Scan(&after)
		if errors.Is(err, sql.ErrNoRows) {
			var available int
			if err := tx.GetContext(ctx, &available, tx.Rebind(`SELECT COALESCE(MAX(quantity), 0) FROM inventory WHERE product_id = ?`), l.ProductID); err != nil {
				return nil, fmt.Errorf("failed to read stock: %w", err)
			}
			lineErrs[l.idx] = &apperr.InsufficientStockError{ProductID: l.ProductID, Product: product.Name, Available: available, Requested: l.Quantity}
			failed = true
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		receipts[l.idx] = dto.LineReceipt{
			OrderLine: model.OrderLine{
				ProductID:   l.ProductID,
				ProductName: product.Name,
				Quantity:    l.Quantity,
				UnitPrice:   product.Price,
				LineTotal:   lineTotal,
			},
			StockBefore: after + l.Quantity,
			StockAfter:  after,
		}
	}

	if failed {
		var errs []error
		for _, e := range lineErrs {
			if e != nil {
				errs = append(errs, e)
			}
		}
		return nil, &apperr.LineErrors{Errors: errs}
	}

	total := decimal.Zero
	for _, rc := range receipts {
		total = total.Add(rc.LineTotal)
	}

	order := &model.Order{
		CustomerID:    in.CustomerID,
		CustomerName:  customerName,
		Status:        model.OrderPending,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   total,
		OrderDate:     now,
		UpdatedAt:     now,
	}
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
        INSERT INTO orders (customer_id, status, payment_method, total_amount, order_date, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id`),
		order.CustomerID, string(order.Status), order.PaymentMethod, order.TotalAmount, order.OrderDate, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	ref := "order"
	orderRef := strconv.FormatInt(order.ID, 10)
	for i := range receipts {
		line := &receipts[i]
		line.OrderID = order.ID
		err = tx.QueryRowxContext(ctx, tx.Rebind(`
            INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_total)
            VALUES (?, ?, ?, ?, ?)
            RETURNING id`),
			line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal,
		).Scan(&line.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order line: %w", err)
		}

		err = invRepo.LogMovement(ctx, tx, &model.InventoryMovement{
			ProductID:      line.ProductID,
			MovementType:   model.MovementSale,
			QuantityChange: -line.Quantity,
			QuantityBefore: line.StockBefore,
			QuantityAfter:  line.StockAfter,
			ReferenceType:  &ref,
			ReferenceID:    &orderRef,
			Notes:          "sale",
			CreatedAt:      now,
		})
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line.OrderLine)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return &dto.Receipt{Order: order, Lines: receipts}, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, r.DB.Rebind(orderSelect+` WHERE o.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	orders := []model.Order{o}
	if err := r.attachLines(ctx, r.DB, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, error) {
	if f == nil {
		f = &dto.OrderFilters{}
	}
	conditions := []string{}
	args := map[string]interface{}{}

	if f.CustomerID > 0 {
		conditions = append(conditions, "o.customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	if f.Status != "" {
		conditions = append(conditions, "o.status = :status")
		args["status"] = string(f.Status)
	}
	if f.StartDate != nil {
		conditions = append(conditions, "o.order_date >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "o.order_date <= :end_date")
		args["end_date"] = *f.EndDate
	}

	query := orderSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY o.order_date DESC, o.id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	q, qArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	var orders []model.Order
	if err := r.DB.SelectContext(ctx, &orders, r.DB.Rebind(q), qArgs...); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, r.DB, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *SQLRepository) attachLines(ctx context.Context, q sqlx.QueryerContext, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	byID := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = i
	}

	query, args, err := sqlx.In(lineSelect+` WHERE oi.order_id IN (?) ORDER BY oi.id`, ids)
	if err != nil {
		return err
	}
	var lines []model.OrderLine
	if err := sqlx.SelectContext(ctx, q, &lines, r.DB.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	for _, l := range lines {
		i := byID[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return nil
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, id int64, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, apperr.Validation("status", fmt.Sprintf("unknown order status %q", next))
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var o model.Order
	err = tx.GetContext(ctx, &o, tx.Rebind(orderSelect+` WHERE o.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperr.NotFoundError{Entity: "order", Ref: strconv.FormatInt(id, 10)}
		}
		return nil, err
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, apperr.Validation("status", fmt.Sprintf("cannot move order %d from %s to %s", id, o.Status, next))
	}

	orders := []model.Order{o}
	if err := r.attachLines(ctx, tx, orders); err != nil {
		return nil, err
	}
	o = orders[0]
	now := r.now()

	// The status guard makes a concurrent transition of the same order lose
	// here, before any stock is returned.
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`),
		string(next), now, id, string(o.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	} else if n == 0 {
		return nil, &apperr.ConflictError{Entity: "order", Field: "status", Value: string(o.Status)}
	}

	if next == model.OrderCancelled {
		ref := "order_cancel"
		orderRef := strconv.FormatInt(id, 10)
		for _, line := range o.Lines {
			var after int
			err := tx.QueryRowxContext(ctx, tx.Rebind(`
                UPDATE inventory SET quantity = quantity + ?, updated_at = ?
                WHERE product_id = ?
                RETURNING quantity`),
				line.Quantity, now, line.ProductID,
			).Scan(&after)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to restock: %w", err)
			}
			err = invRepo.LogMovement(ctx, tx, &model.InventoryMovement{
				ProductID:      line.ProductID,
				MovementType:   model.MovementReturn,
				QuantityChange: line.Quantity,
				QuantityBefore: after - line.Quantity,
				QuantityAfter:  after,
				ReferenceType:  &ref,
				ReferenceID:    &orderRef,
				Notes:          "order cancelled",
				CreatedAt:      now,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	o.Status = next
	o.UpdatedAt = now
	return &o, nil
}
