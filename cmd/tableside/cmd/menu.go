package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var menuCategoryID int64

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Browse the menu",
	Long:  `List menu items, optionally filtered by category. Responses are cached locally.`,
	RunE:  runMenu,
}

var menuCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List menu categories",
	RunE:  runMenuCategories,
}

func init() {
	menuCmd.Flags().Int64VarP(&menuCategoryID, "category", "c", 0, "filter by category id")
	menuCmd.AddCommand(menuCategoriesCmd)
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	a, err := hydratedApp(cmd)
	if err != nil {
		return err
	}

	items, err := a.client.FetchMenu(cmd.Context(), menuCategoryID)
	if err != nil {
		return a.userError(err)
	}
	if len(items) == 0 {
		fmt.Println("Меню пусто")
		return nil
	}

	for _, it := range items {
		marker := " "
		if !it.Available {
			marker = "-"
		}
		fmt.Printf("%s %6d  %-30s %8.2f", marker, it.ID, it.Name, it.Price)
		if it.Weight != "" {
			fmt.Printf("  %s", it.Weight)
		}
		fmt.Println()
	}
	return nil
}

func runMenuCategories(cmd *cobra.Command, args []string) error {
	a, err := hydratedApp(cmd)
	if err != nil {
		return err
	}

	categories, err := a.client.FetchCategories(cmd.Context())
	if err != nil {
		return a.userError(err)
	}

	for _, c := range categories {
		fmt.Printf("%6d  %s\n", c.ID, c.Name)
	}
	return nil
}
