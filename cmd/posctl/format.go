package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"restaurant-pos-api/models"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func ago(t time.Time) string {
	return humanize.Time(t)
}

// printTable renders one titled, borderless table; appendFn adds the rows
func printTable(out io.Writer, title string, headers []string, appendFn func(w *tablewriter.Table)) {
	if title != "" {
		fmt.Fprintln(out, title)
	}
	w := tablewriter.NewWriter(out)
	w.SetBorder(false)
	w.SetAutoWrapText(false)
	w.SetAutoFormatHeaders(false)
	w.SetAlignment(tablewriter.ALIGN_LEFT)
	w.SetHeader(headers)
	appendFn(w)
	w.Render()
}

func itemsSummary(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		name := fmt.Sprintf("#%d", it.MenuItemID)
		if it.MenuItem != nil {
			name = it.MenuItem.Name
		}
		parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, name))
	}
	return strings.Join(parts, ", ")
}
