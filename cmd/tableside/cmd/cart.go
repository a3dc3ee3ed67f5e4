package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and manage the cart",
	RunE:  runCartShow,
}

var cartQuantity int

var cartAddCmd = &cobra.Command{
	Use:   "add <item-id>",
	Short: "Add a menu item to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartSetCmd = &cobra.Command{
	Use:   "set <item-id> <quantity>",
	Short: "Set the quantity of a cart item",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove an item from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all items from the cart",
	RunE:  runCartClear,
}

func init() {
	cartAddCmd.Flags().IntVarP(&cartQuantity, "quantity", "q", 1, "quantity to add")
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}

// cartApp hydrates the session and pulls the server cart once, so each
// subcommand mutates against current state.
func cartApp(cmd *cobra.Command) (*app, error) {
	a, err := hydratedApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	if err := a.cart.Refresh(cmd.Context()); err != nil {
		return nil, a.userError(err)
	}
	return a, nil
}

func runCartShow(cmd *cobra.Command, args []string) error {
	a, err := cartApp(cmd)
	if err != nil {
		return err
	}

	c := a.cart.Cart()
	if c == nil || len(c.Items) == 0 {
		fmt.Println("Корзина пуста")
		return nil
	}

	for _, it := range c.Items {
		fmt.Printf("%6d  %-30s %3d x %8.2f = %8.2f\n",
			it.ItemID, it.Name, it.Quantity, it.UnitPrice, it.TotalPrice)
	}
	fmt.Printf("Итого: %d позиций на сумму %.2f\n", a.cart.TotalItems(), a.cart.TotalAmount())
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	a, err := cartApp(cmd)
	if err != nil {
		return err
	}

	itemID, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.cart.AddItem(cmd.Context(), itemID, cartQuantity); err != nil {
		return a.userError(err)
	}

	fmt.Printf("Добавлено. В корзине %d позиций\n", a.cart.TotalItems())
	return nil
}

func runCartSet(cmd *cobra.Command, args []string) error {
	a, err := cartApp(cmd)
	if err != nil {
		return err
	}

	itemID, err := parseID(args[0])
	if err != nil {
		return err
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil || quantity < 1 {
		return fmt.Errorf("quantity must be a positive number, got %q", args[1])
	}
	if err := a.cart.UpdateItemQuantity(cmd.Context(), itemID, quantity); err != nil {
		return a.userError(err)
	}

	fmt.Printf("Количество обновлено. В корзине %d позиций\n", a.cart.TotalItems())
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	a, err := cartApp(cmd)
	if err != nil {
		return err
	}

	itemID, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.cart.RemoveItem(cmd.Context(), itemID); err != nil {
		return a.userError(err)
	}

	fmt.Printf("Удалено. В корзине %d позиций\n", a.cart.TotalItems())
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	a, err := cartApp(cmd)
	if err != nil {
		return err
	}

	if err := a.cart.Clear(cmd.Context()); err != nil {
		return a.userError(err)
	}

	fmt.Println("Корзина очищена")
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("expected a numeric id, got %q", s)
	}
	return id, nil
}
