package services

import (
	"context"
	"math"
	"sort"
	"time"

	"restaurant-pos-api/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PopularItemsLimit caps the popular items list
const PopularItemsLimit = 5

type SalesSummary struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalOrders  int64   `json:"totalOrders"`
}

type DailyRevenue struct {
	Date         string  `json:"date"`
	DailyRevenue float64 `json:"dailyRevenue"`
	OrderCount   int     `json:"orderCount"`
}

type PopularItem struct {
	MenuItem         uint    `json:"menuItem"`
	Name             string  `json:"name"`
	Category         uint    `json:"category"`
	CategoryName     string  `json:"categoryName"`
	TotalSold        int64   `json:"totalSold"`
	RevenueGenerated float64 `json:"revenueGenerated"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type Analytics struct {
	DailySales    SalesSummary   `json:"dailySales"`
	WeeklyRevenue []DailyRevenue `json:"weeklyRevenue"`
	MonthlyStats  SalesSummary   `json:"monthlyStats"`
	PopularItems  []PopularItem  `json:"popularItems"`
	PeakHours     []HourCount    `json:"peakHours"`
}

type OrderCounts struct {
	Today          int64 `json:"today"`
	Month          int64 `json:"month"`
	Pending        int64 `json:"pending"`
	Preparing      int64 `json:"preparing"`
	CompletedToday int64 `json:"completedToday"`
	AvgTime        int64 `json:"avgTime"`
}

type UserCounts struct {
	Total int64 `json:"total"`
	Staff int64 `json:"staff"`
}

type Dashboard struct {
	Orders          OrderCounts `json:"orders"`
	Revenue         float64     `json:"revenue"`
	ActiveMenuItems int64       `json:"activeMenuItems"`
	Users           UserCounts  `json:"users"`
}

// ReportService runs read-only aggregations over orders. Windows are
// computed from the wall clock in loc on every call.
type ReportService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewReportService(db *gorm.DB, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{db: db, loc: loc, now: time.Now}
}

func (s *ReportService) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

// Analytics computes the sales, trend, popular item and peak hour summaries
func (s *ReportService) Analytics(ctx context.Context) (*Analytics, error) {
	today := s.today()
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -6)
	monthStart := today.AddDate(0, 0, -30)

	daily, err := s.sales(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}
	monthly, err := s.sales(ctx, monthStart, tomorrow)
	if err != nil {
		return nil, err
	}

	stamps, err := s.stamps(ctx, monthStart, tomorrow)
	if err != nil {
		return nil, err
	}

	popular, err := s.PopularItems(ctx)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		DailySales:    daily,
		WeeklyRevenue: s.weekly(stamps, weekStart),
		MonthlyStats:  monthly,
		PopularItems:  popular,
		PeakHours:     s.peakHours(stamps),
	}, nil
}

func (s *ReportService) sales(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	var out SalesSummary
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total_revenue, COUNT(*) AS total_orders").
		Where("created_at >= ? AND created_at < ? AND status <> ?", from.UTC(), to.UTC(), models.StatusCancelled).
		Scan(&out).Error
	if err != nil {
		return out, errors.Wrap(err, "sales summary")
	}
	out.TotalRevenue = roundCents(out.TotalRevenue)
	return out, nil
}

type orderStamp struct {
	CreatedAt   time.Time
	TotalAmount float64
}

// stamps loads creation time and total of non-cancelled orders in [from, to).
// Day and hour bucketing happen in Go so they follow loc on every driver.
func (s *ReportService) stamps(ctx context.Context, from, to time.Time) ([]orderStamp, error) {
	var rows []orderStamp
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("created_at, total_amount").
		Where("created_at >= ? AND created_at < ? AND status <> ?", from.UTC(), to.UTC(), models.StatusCancelled).
		Scan(&rows).Error
	return rows, errors.Wrap(err, "order timestamps")
}

func (s *ReportService) weekly(stamps []orderStamp, from time.Time) []DailyRevenue {
	byDay := map[string]*DailyRevenue{}
	for _, st := range stamps {
		local := st.CreatedAt.In(s.loc)
		if local.Before(from) {
			continue
		}
		key := local.Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &DailyRevenue{Date: key}
			byDay[key] = d
		}
		d.DailyRevenue += st.TotalAmount
		d.OrderCount++
	}

	out := make([]DailyRevenue, 0, len(byDay))
	for _, d := range byDay {
		d.DailyRevenue = roundCents(d.DailyRevenue)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *ReportService) peakHours(stamps []orderStamp) []HourCount {
	var buckets [24]int
	for _, st := range stamps {
		buckets[st.CreatedAt.In(s.loc).Hour()]++
	}
	out := make([]HourCount, 0, 24)
	for h, c := range buckets {
		if c > 0 {
			out = append(out, HourCount{Hour: h, Count: c})
		}
	}
	return out
}

type popularRow struct {
	MenuItemID       uint
	Name             string
	CategoryID       uint
	CategoryName     *string
	TotalSold        int64
	RevenueGenerated float64
}

// PopularItems ranks menu items by quantity sold across all non-cancelled
// orders. Lines whose menu item was deleted are skipped.
func (s *ReportService) PopularItems(ctx context.Context) ([]PopularItem, error) {
	var rows []popularRow
	err := s.db.WithContext(ctx).Table("order_items").
		Select("order_items.menu_item_id AS menu_item_id, menu_items.name AS name, "+
			"menu_items.category_id AS category_id, categories.name AS category_name, "+
			"SUM(order_items.quantity) AS total_sold, "+
			"SUM(order_items.price * order_items.quantity) AS revenue_generated").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("LEFT JOIN categories ON categories.id = menu_items.category_id").
		Where("orders.status <> ?", models.StatusCancelled).
		Group("order_items.menu_item_id, menu_items.name, menu_items.category_id, categories.name").
		Order("total_sold DESC, order_items.menu_item_id ASC").
		Limit(PopularItemsLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "popular items")
	}

	out := make([]PopularItem, 0, len(rows))
	for _, r := range rows {
		name := models.UncategorizedLabel
		if r.CategoryName != nil {
			name = *r.CategoryName
		}
		out = append(out, PopularItem{
			MenuItem:         r.MenuItemID,
			Name:             r.Name,
			Category:         r.CategoryID,
			CategoryName:     name,
			TotalSold:        r.TotalSold,
			RevenueGenerated: roundCents(r.RevenueGenerated),
		})
	}
	return out, nil
}

// Dashboard computes the admin summary counters
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	today := s.today()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	db := s.db.WithContext(ctx)
	var d Dashboard

	counts := []struct {
		dst   *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&d.Orders.Today, &models.Order{}, "created_at >= ?", []interface{}{today.UTC()}},
		{&d.Orders.Month, &models.Order{}, "created_at >= ?", []interface{}{monthStart.UTC()}},
		{&d.Orders.Pending, &models.Order{}, "status = ?", []interface{}{models.StatusPending}},
		{&d.Orders.Preparing, &models.Order{}, "status = ?", []interface{}{models.StatusPreparing}},
		{&d.ActiveMenuItems, &models.MenuItem{}, "is_available = ?", []interface{}{true}},
		{&d.Users.Staff, &models.User{}, "role IN ?", []interface{}{models.StaffRoles}},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.query, c.args...).Count(c.dst).Error; err != nil {
			return nil, errors.Wrap(err, "dashboard count")
		}
	}
	if err := db.Model(&models.User{}).Count(&d.Users.Total).Error; err != nil {
		return nil, errors.Wrap(err, "count users")
	}

	var revenue struct{ Total float64 }
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("payment_status = ?", models.PaymentPaid).
		Scan(&revenue).Error; err != nil {
		return nil, errors.Wrap(err, "paid revenue")
	}
	d.Revenue = roundCents(revenue.Total)

	var completed []struct {
		CreatedAt time.Time
		UpdatedAt time.Time
	}
	if err := db.Model(&models.Order{}).
		Select("created_at, updated_at").
		Where("status = ? AND updated_at >= ?", models.StatusServed, today.UTC()).
		Scan(&completed).Error; err != nil {
		return nil, errors.Wrap(err, "completed orders")
	}
	d.Orders.CompletedToday = int64(len(completed))
	if len(completed) > 0 {
		var total time.Duration
		for _, c := range completed {
			total += c.UpdatedAt.Sub(c.CreatedAt)
		}
		avg := total / time.Duration(len(completed))
		d.Orders.AvgTime = int64(math.Round(avg.Minutes()))
	}
	return &d, nil
}
