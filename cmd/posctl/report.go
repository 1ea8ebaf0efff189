package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Dashboard summary (admin, staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			d, err := a.api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), "", []string{"METRIC", "VALUE"}, func(w *tablewriter.Table) {
				w.AppendBulk([][]string{
					{"Orders today", fmt.Sprint(d.Orders.Today)},
					{"Orders this month", fmt.Sprint(d.Orders.Month)},
					{"Pending / preparing", fmt.Sprintf("%d / %d", d.Orders.Pending, d.Orders.Preparing)},
					{"Served today", fmt.Sprintf("%d (avg %d min)", d.Orders.CompletedToday, d.Orders.AvgTime)},
					{"Paid revenue", money(d.Revenue)},
					{"Active menu items", fmt.Sprint(d.ActiveMenuItems)},
					{"Users (staff)", fmt.Sprintf("%d (%d)", d.Users.Total, d.Users.Staff)},
				})
			})
			return nil
		},
	}
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Sales analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.api.Analytics(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printTable(out, "Sales", []string{"PERIOD", "REVENUE", "ORDERS"}, func(w *tablewriter.Table) {
				w.Append([]string{"Today", money(r.DailySales.TotalRevenue), fmt.Sprint(r.DailySales.TotalOrders)})
				w.Append([]string{"Last 30 days", money(r.MonthlyStats.TotalRevenue), fmt.Sprint(r.MonthlyStats.TotalOrders)})
			})
			printTable(out, "\nLast 7 days", []string{"DATE", "REVENUE", "ORDERS"}, func(w *tablewriter.Table) {
				for _, d := range r.WeeklyRevenue {
					w.Append([]string{d.Date, money(d.DailyRevenue), fmt.Sprint(d.OrderCount)})
				}
			})
			printTable(out, "\nPopular items", []string{"#", "ITEM", "CATEGORY", "SOLD", "REVENUE"}, func(w *tablewriter.Table) {
				for i, p := range r.PopularItems {
					w.Append([]string{fmt.Sprint(i + 1), p.Name, p.CategoryName, fmt.Sprint(p.TotalSold), money(p.RevenueGenerated)})
				}
			})
			printTable(out, "\nPeak hours", []string{"HOUR", "ORDERS"}, func(w *tablewriter.Table) {
				for _, h := range r.PeakHours {
					w.Append([]string{fmt.Sprintf("%02d:00", h.Hour), fmt.Sprint(h.Count)})
				}
			})
			return nil
		},
	}
}

func (a *app) themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [light|dark|toggle]",
		Short: "Show or change the display theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var theme string
			var err error
			switch {
			case len(args) == 0:
				theme, err = a.store.Theme()
			case args[0] == "toggle":
				theme, err = a.store.ToggleTheme()
			default:
				theme, err = args[0], a.store.SetTheme(args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}
	return cmd
}
