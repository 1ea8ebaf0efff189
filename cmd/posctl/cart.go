package main

import (
	"fmt"
	"sort"
	"strconv"

	"restaurant-pos-api/client"
	"restaurant-pos-api/models"
	"restaurant-pos-api/services"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (a *app) menuCmd() *cobra.Command {
	var category uint
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "List the menu grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.api.MenuItems(cmd.Context(), category)
			if err != nil {
				return err
			}
			groups := services.GroupByCategory(items)
			names := make([]string, 0, len(groups))
			for name := range groups {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				printTable(cmd.OutOrStdout(), name, []string{"ID", "NAME", "PRICE", "AVAILABLE"}, func(w *tablewriter.Table) {
					for _, it := range groups[name] {
						avail := "yes"
						if !it.IsAvailable {
							avail = "no"
						}
						w.Append([]string{strconv.FormatUint(uint64(it.ID), 10), it.Name, money(it.Price), avail})
					}
				})
			}
			return nil
		},
	}
	cmd.Flags().UintVar(&category, "category", 0, "only this category id")
	return cmd
}

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or edit the local cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, err := a.store.LoadCart()
			if err != nil {
				return err
			}
			return printCart(cmd, cart)
		},
	}

	add := &cobra.Command{
		Use:   "add <menu-item-id>",
		Short: "Add one of a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			items, err := a.api.MenuItems(cmd.Context(), 0)
			if err != nil {
				return err
			}
			for _, it := range items {
				if it.ID == id {
					return a.updateCart(cmd, client.Add(it))
				}
			}
			return fmt.Errorf("menu item %d not found", id)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <menu-item-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.updateCart(cmd, client.Remove(id))
		},
	}

	set := &cobra.Command{
		Use:   "set <menu-item-id> <quantity>",
		Short: "Set a line's quantity; below 1 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return a.updateCart(cmd, client.Quantity(id, qty))
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateCart(cmd, client.Clear())
		},
	}

	cmd.AddCommand(add, remove, set, clearCmd)
	return cmd
}

func (a *app) updateCart(cmd *cobra.Command, action client.Action) error {
	cart, err := a.store.LoadCart()
	if err != nil {
		return err
	}
	cart = client.Reduce(cart, action)
	if err := a.store.SaveCart(cart); err != nil {
		return err
	}
	return printCart(cmd, cart)
}

func printCart(cmd *cobra.Command, cart client.Cart) error {
	if cart.Empty() {
		fmt.Fprintln(cmd.OutOrStdout(), "Cart is empty")
		return nil
	}
	printTable(cmd.OutOrStdout(), "", []string{"ID", "ITEM", "QTY", "PRICE"}, func(w *tablewriter.Table) {
		for _, l := range cart.Lines {
			w.Append([]string{strconv.FormatUint(uint64(l.MenuItemID), 10), l.Name, strconv.Itoa(l.Quantity), money(l.Price)})
		}
		w.SetFooter([]string{"", "TOTAL", strconv.Itoa(cart.Count()), money(cart.Total())})
	})
	return nil
}

func (a *app) checkoutCmd() *cobra.Command {
	var tableNo, customer, method string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			cart, err := a.store.LoadCart()
			if err != nil {
				return err
			}
			if cart.Empty() {
				return fmt.Errorf("cart is empty")
			}
			cart = client.Reduce(cart, client.Table(tableNo))
			cart = client.Reduce(cart, client.Customer(customer))
			cart = client.Reduce(cart, client.Payment(models.PaymentMethod(method)))

			order, err := a.api.CreateOrder(cmd.Context(), cart.OrderRequest())
			if err != nil {
				return err
			}
			if err := a.store.SaveCart(client.Reduce(cart, client.Clear())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d placed, total %s\n", order.ID, money(order.TotalAmount))
			return nil
		},
	}
	cmd.Flags().StringVar(&tableNo, "table", "", "table number")
	cmd.Flags().StringVar(&customer, "customer", "", "walk-in customer name")
	cmd.Flags().StringVar(&method, "method", "", "Cash, Card, Mobile Money or Other")
	return cmd
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
