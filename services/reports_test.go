package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"restaurant-pos-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var reportNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

type reportFixture struct {
	db      *gorm.DB
	svc     *ReportService
	a, b    models.MenuItem
	served  models.Order
	pending models.Order
}

func newReportFixture(t *testing.T) reportFixture {
	db := newTestDB(t)
	svc := NewReportService(db, time.UTC)
	svc.now = func() time.Time { return reportNow }

	cat := seedCategory(t, db, "Mains")
	a := seedMenuItem(t, db, "A", 10, cat.ID)
	b := seedMenuItem(t, db, "B", 5, cat.ID)
	admin := seedUser(t, db, "boss", models.RoleAdmin)
	seedUser(t, db, "chef", models.RoleKitchen)
	seedUser(t, db, "cust", models.RoleCustomer)

	today := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	served := seedOrder(t, db, admin.ID, models.StatusServed, today.Add(10*time.Hour), line(a, 2))
	pending := seedOrder(t, db, admin.ID, models.StatusPending, today.Add(10*time.Hour+30*time.Minute), line(b, 1))
	seedOrder(t, db, admin.ID, models.StatusCancelled, today.Add(11*time.Hour), line(a, 5))
	seedOrder(t, db, admin.ID, models.StatusReady, today.Add(-15*time.Hour), line(a, 1))
	seedOrder(t, db, admin.ID, models.StatusServed, today.AddDate(0, 0, -10).Add(20*time.Hour), line(a, 1))
	seedOrder(t, db, admin.ID, models.StatusServed, today.AddDate(0, 0, -40), line(a, 1))

	require.NoError(t, db.Model(&served).UpdateColumns(map[string]interface{}{
		"updated_at":     today.Add(10*time.Hour + 30*time.Minute),
		"payment_status": models.PaymentPaid,
	}).Error)

	return reportFixture{db: db, svc: svc, a: a, b: b, served: served, pending: pending}
}

func TestAnalyticsSales(t *testing.T) {
	f := newReportFixture(t)

	got, err := f.svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SalesSummary{TotalRevenue: 25, TotalOrders: 2}, got.DailySales)
	assert.Equal(t, SalesSummary{TotalRevenue: 45, TotalOrders: 4}, got.MonthlyStats)
}

func TestAnalyticsWeeklyRevenueSortedAndWindowed(t *testing.T) {
	f := newReportFixture(t)

	got, err := f.svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []DailyRevenue{
		{Date: "2026-03-13", DailyRevenue: 10, OrderCount: 1},
		{Date: "2026-03-14", DailyRevenue: 25, OrderCount: 2},
	}, got.WeeklyRevenue)
}

func TestAnalyticsPeakHours(t *testing.T) {
	f := newReportFixture(t)

	got, err := f.svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []HourCount{{Hour: 9, Count: 1}, {Hour: 10, Count: 2}, {Hour: 20, Count: 1}}, got.PeakHours)
}

func TestPopularItemsExcludeCancelled(t *testing.T) {
	f := newReportFixture(t)

	got, err := f.svc.PopularItems(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, f.a.ID, got[0].MenuItem)
	assert.Equal(t, int64(5), got[0].TotalSold)
	assert.Equal(t, 50.0, got[0].RevenueGenerated)
	assert.Equal(t, "Mains", got[0].CategoryName)
	assert.Equal(t, f.b.ID, got[1].MenuItem)
	assert.Equal(t, int64(1), got[1].TotalSold)
}

func TestPopularItemsLimitAndOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, time.UTC)
	admin := seedUser(t, db, "boss", models.RoleAdmin)

	for i := 1; i <= 7; i++ {
		item := seedMenuItem(t, db, fmt.Sprintf("dish-%d", i), 1, 999)
		seedOrder(t, db, admin.ID, models.StatusPending, reportNow, line(item, i))
	}

	got, err := svc.PopularItems(context.Background())
	require.NoError(t, err)
	require.Len(t, got, PopularItemsLimit)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].TotalSold, got[i].TotalSold)
	}
	assert.Equal(t, int64(7), got[0].TotalSold)
	assert.Equal(t, models.UncategorizedLabel, got[0].CategoryName)
}

func TestAnalyticsEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, time.UTC)

	got, err := svc.Analytics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.DailySales.TotalOrders)
	assert.Empty(t, got.WeeklyRevenue)
	assert.Empty(t, got.PopularItems)
	assert.Empty(t, got.PeakHours)
}

func TestDashboard(t *testing.T) {
	f := newReportFixture(t)
	require.NoError(t, f.db.Model(&f.a).Update("is_available", false).Error)

	got, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), got.Orders.Today)
	assert.Equal(t, int64(5), got.Orders.Month)
	assert.Equal(t, int64(1), got.Orders.Pending)
	assert.Equal(t, int64(0), got.Orders.Preparing)
	assert.Equal(t, int64(1), got.Orders.CompletedToday)
	assert.Equal(t, int64(30), got.Orders.AvgTime)
	assert.Equal(t, 20.0, got.Revenue)
	assert.Equal(t, int64(1), got.ActiveMenuItems)
	assert.Equal(t, UserCounts{Total: 3, Staff: 2}, got.Users)
}
