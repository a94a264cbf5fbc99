package commands

import (
	"fmt"
	"strconv"

	"github.com/fekuna/omnipos-assistant-service/internal/app"
	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/model"
	"github.com/spf13/cobra"
)

func newProductCmd(opts *options) *cobra.Command {
	productCmd := &cobra.Command{
		Use:   "product",
		Short: "Administer products",
	}

	var cascade bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Long: `Delete a product and its inventory.

A product referenced by orders is kept unless --cascade is given, which also
removes every order containing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				if err := a.Products.DeleteProduct(cmd.Context(), id, cascade); err != nil {
					return describe("Could not delete the product", err)
				}
				return printResult(cmd.OutOrStdout(), opts, chat.Result{
					Success: true,
					Text:    fmt.Sprintf("Product %d deleted.", id),
					Data:    map[string]any{"product_id": id, "cascade": cascade},
				})
			})
		},
	}
	deleteCmd.Flags().BoolVar(&cascade, "cascade", false, "Also delete orders that reference the product")

	productCmd.AddCommand(deleteCmd)
	return productCmd
}

func newOrderCmd(opts *options) *cobra.Command {
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Administer orders",
	}

	statusCmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an order to a new status",
		Long: `Move an order along pending, confirmed, processing, shipped, delivered.
Any order that is not delivered can be cancelled, which puts its stock back.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := model.OrderStatus(args[1])
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				o, err := a.Orders.UpdateStatus(cmd.Context(), id, status)
				if err != nil {
					return describe("Could not update the order", err)
				}
				return printResult(cmd.OutOrStdout(), opts, chat.Result{
					Success: true,
					Text:    fmt.Sprintf("Order #%d is now %s.", o.ID, o.Status),
					Order:   o,
				})
			})
		},
	}

	orderCmd.AddCommand(statusCmd)
	return orderCmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// describe gives taxonomy errors the same wording the chat pipeline uses.
func describe(prefix string, err error) error {
	if apperr.IsDomain(err) {
		return fmt.Errorf("%s", chat.Failure(prefix, err).Text)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
