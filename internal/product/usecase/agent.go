package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/extract"
	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/fekuna/omnipos-assistant-service/internal/product"
	"github.com/fekuna/omnipos-assistant-service/internal/product/dto"
	"go.uber.org/zap"
)

// Agent turns add-product and edit commands into product use case calls.
type Agent struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewAgent(uc product.UseCase, log logger.ZapLogger) *Agent {
	return &Agent{uc: uc, logger: log}
}

func (a *Agent) Handle(ctx context.Context, t intent.Type, text string) (chat.Result, error) {
	a.logger.Debug("Product agent handling command", zap.String("intent", string(t)))

	switch t {
	case intent.AddProduct:
		return a.addProduct(ctx, text)
	case intent.EditInventory:
		return a.editInventory(ctx, text)
	}
	return chat.Result{}, fmt.Errorf("product agent cannot handle %s", t)
}

// ParseCreateInput pulls the add-product fields out of text; missing required fields are validation errors.
func ParseCreateInput(text string) (*dto.CreateProductInput, error) {
	name, ok := extract.Text(extract.Name, text)
	if !ok {
		return nil, apperr.Validation("name", `Tell me the product name, e.g. "add product Laptop, price $800, quantity 10".`)
	}
	price, ok := extract.Decimal(extract.Price, text)
	if !ok {
		return nil, apperr.Validation("price", `Include the price, e.g. "price $800".`)
	}
	qty, ok := extract.Int(extract.Quantity, text)
	if !ok {
		return nil, apperr.Validation("quantity", `Include the quantity, e.g. "quantity 10" or "10 units".`)
	}

	in := &dto.CreateProductInput{Name: name, Price: price, Quantity: qty}
	in.Category, _ = extract.Text(extract.Category, text)
	in.Description, _ = extract.Text(extract.Description, text)
	in.SKU, _ = extract.Text(extract.SKU, text)
	in.Location, _ = extract.Text(extract.Location, text)
	if v, ok := extract.Int(extract.MinStock, text); ok {
		in.MinThreshold = &v
	}
	if v, ok := extract.Int(extract.MaxStock, text); ok {
		in.MaxThreshold = &v
	}
	return in, nil
}

func (a *Agent) addProduct(ctx context.Context, text string) (chat.Result, error) {
	in, err := ParseCreateInput(text)
	if err != nil {
		return chat.Convert("Could not add the product", err)
	}

	p, err := a.uc.CreateProduct(ctx, in)
	if err != nil {
		a.logger.Warn("Add product failed", zap.String("name", in.Name), zap.Error(err))
		return chat.Convert("Could not add the product", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Product added: %s (SKU %s, id %d)\n", p.Name, p.SKU, p.ID)
	fmt.Fprintf(&b, "Price: %s\n", chat.Money(p.Price))
	fmt.Fprintf(&b, "Quantity: %d units at %s\n", p.Quantity, p.Location)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	fmt.Fprintf(&b, "Stock thresholds: min %d, max %d", p.MinThreshold, p.MaxThreshold)

	return chat.Result{
		Success: true,
		Text:    b.String(),
		Data:    map[string]any{"product": p, "status": p.Status()},
	}, nil
}

// ParseUpdateInput collects every change an edit command names. The product id is resolved separately.
func ParseUpdateInput(text string) *dto.UpdateProductInput {
	in := &dto.UpdateProductInput{}
	if v, ok := extract.Text(extract.NewName, text); ok {
		in.Name = &v
	}
	if v, ok := extract.Decimal(extract.Price, text); ok {
		in.Price = &v
	}
	if v, ok := extract.Text(extract.Category, text); ok {
		in.Category = &v
	}
	if v, ok := extract.Text(extract.Description, text); ok {
		in.Description = &v
	}
	if v, ok := extract.Int(extract.Quantity, text); ok {
		in.Quantity = &v
	}
	if v, ok := extract.Int(extract.MinStock, text); ok {
		in.MinThreshold = &v
	}
	if v, ok := extract.Int(extract.MaxStock, text); ok {
		in.MaxThreshold = &v
	}
	return in
}

func (a *Agent) resolve(ctx context.Context, text string) (*model.ProductStock, error) {
	if id, ok := extract.ID(extract.ProductID, text); ok {
		return a.uc.GetProduct(ctx, id)
	}
	ref, ok := extract.Text(extract.Target, text)
	if !ok {
		return nil, apperr.Validation("product", `Say which product to edit, e.g. "update Laptop price to $750" or "update product id 4 to 15 units".`)
	}
	return a.uc.FindByReference(ctx, ref)
}

func (a *Agent) editInventory(ctx context.Context, text string) (chat.Result, error) {
	target, err := a.resolve(ctx, text)
	if err != nil {
		return chat.Convert("Could not edit the product", err)
	}

	in := ParseUpdateInput(text)
	in.ID = target.ID
	if in.Empty() {
		return chat.Convert("Could not edit the product", apperr.Validation("changes",
			"No changes specified. Tell me a new price, quantity, category, description, minimum, maximum or name."))
	}

	updated, err := a.uc.UpdateProduct(ctx, in)
	if err != nil {
		a.logger.Warn("Edit product failed", zap.Int64("product_id", target.ID), zap.Error(err))
		return chat.Convert("Could not edit the product", err)
	}

	changes := describeChanges(target, updated)
	text = fmt.Sprintf("Updated %s (id %d)", updated.Name, updated.ID)
	if len(changes) > 0 {
		text += ":\n- " + strings.Join(changes, "\n- ")
	}

	return chat.Result{
		Success: true,
		Text:    text,
		Data:    map[string]any{"product": updated, "changes": changes, "status": updated.Status()},
	}, nil
}

func describeChanges(before, after *model.ProductStock) []string {
	var out []string
	if before.Name != after.Name {
		out = append(out, fmt.Sprintf("name: %s -> %s", before.Name, after.Name))
	}
	if !before.Price.Equal(after.Price) {
		out = append(out, fmt.Sprintf("price: %s -> %s", chat.Money(before.Price), chat.Money(after.Price)))
	}
	if before.Category != after.Category {
		out = append(out, fmt.Sprintf("category: %s -> %s", before.Category, after.Category))
	}
	if before.Description != after.Description {
		out = append(out, "description updated")
	}
	if before.Quantity != after.Quantity {
		out = append(out, fmt.Sprintf("quantity: %d -> %d", before.Quantity, after.Quantity))
	}
	if before.MinThreshold != after.MinThreshold {
		out = append(out, fmt.Sprintf("minimum stock: %d -> %d", before.MinThreshold, after.MinThreshold))
	}
	if before.MaxThreshold != after.MaxThreshold {
		out = append(out, fmt.Sprintf("maximum stock: %d -> %d", before.MaxThreshold, after.MaxThreshold))
	}
	return out
}
