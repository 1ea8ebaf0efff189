package main

import (
	"fmt"
	"io"
	"time"

	"restaurant-pos-api/client"
	"restaurant-pos-api/models"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (a *app) ordersCmd() *cobra.Command {
	var statuses []string
	var date, paymentStatus, paymentMethod string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders; customers only see their own",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			q := client.OrderQuery{
				Date:          date,
				PaymentStatus: models.PaymentStatus(paymentStatus),
				PaymentMethod: models.PaymentMethod(paymentMethod),
			}
			for _, s := range statuses {
				q.Statuses = append(q.Statuses, models.OrderStatus(s))
			}
			orders, err := a.api.Orders(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printOrders(cmd.OutOrStdout(), orders)
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by status (repeatable)")
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD")
	cmd.Flags().StringVar(&paymentStatus, "payment-status", "", "paid or unpaid")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "", "Cash, Card, Mobile Money or Other")
	return cmd
}

func printOrders(out io.Writer, orders []models.Order) error {
	headers := []string{"ID", "PLACED", "STATUS", "PAYMENT", "TABLE", "TOTAL", "ITEMS"}
	printTable(out, "", headers, func(w *tablewriter.Table) {
		for _, o := range orders {
			w.Append([]string{
				fmt.Sprint(o.ID),
				ago(o.CreatedAt),
				string(o.Status),
				string(o.PaymentStatus) + "/" + string(o.PaymentMethod),
				o.TableNumber,
				money(o.TotalAmount),
				itemsSummary(o.Items),
			})
		}
		w.SetFooter([]string{"", "", "", "", "", "COUNT", fmt.Sprint(len(orders))})
	})
	return nil
}

func (a *app) orderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Change an order",
	}

	status := &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Set the status; any status is accepted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			order, err := a.api.SetStatus(cmd.Context(), id, models.OrderStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d is now %s\n", order.ID, order.Status)
			return nil
		},
	}

	var method string
	pay := &cobra.Command{
		Use:   "pay <order-id>",
		Short: "Mark an order paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			order, err := a.api.MarkPaid(cmd.Context(), id, models.PaymentMethod(method))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d paid %s by %s\n", order.ID, money(order.TotalAmount), order.PaymentMethod)
			return nil
		},
	}
	pay.Flags().StringVar(&method, "method", string(models.MethodCash), "Cash, Card, Mobile Money or Other")

	cmd.AddCommand(status, pay)
	return cmd
}

func (a *app) kitchenCmd() *cobra.Command {
	var interval time.Duration
	var once bool
	cmd := &cobra.Command{
		Use:   "kitchen",
		Short: "Kitchen display: active orders, oldest first, refreshed on an interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			poller := client.NewKitchenPoller(a.api, interval)
			if once {
				board, err := poller.Poll(cmd.Context())
				if err != nil {
					return err
				}
				return printBoard(out, board)
			}
			poller.Run(cmd.Context(), func(b client.Board) {
				printBoard(out, b)
			}, func(err error) {
				fmt.Fprintln(cmd.ErrOrStderr(), "refresh failed:", err)
			})
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultPollInterval, "refresh interval")
	cmd.Flags().BoolVar(&once, "once", false, "print one board and exit")
	return cmd
}

func printBoard(out io.Writer, b client.Board) error {
	title := fmt.Sprintf("\nKitchen %s, %d active", b.PolledAt.Format("15:04:05"), len(b.Tickets))
	if b.NewArrivals > 0 {
		title += fmt.Sprintf(" (%d new)", b.NewArrivals)
	}
	printTable(out, title, []string{"ORDER", "STATUS", "WAITING", "ITEMS", "NEXT"}, func(w *tablewriter.Table) {
		for _, t := range b.Tickets {
			next := "-"
			if t.Advance != "" {
				next = string(t.Advance)
			}
			w.Append([]string{
				fmt.Sprintf("#%d", t.Order.ID),
				string(t.Order.Status),
				ago(t.Order.CreatedAt),
				itemsSummary(t.Order.Items),
				next,
			})
		}
	})
	return nil
}
