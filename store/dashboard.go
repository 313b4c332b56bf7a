package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"restaurant/models"
)

type DashboardRepo struct {
	orders     *mongo.Collection
	tables     *mongo.Collection
	menu       *mongo.Collection
	staff      *mongo.Collection
	attendance *mongo.Collection
}

func NewDashboardRepo(orders, tables, menu, staff, attendance *mongo.Collection) *DashboardRepo {
	return &DashboardRepo{orders: orders, tables: tables, menu: menu, staff: staff, attendance: attendance}
}

type DashboardStats struct {
	TodayRevenue   float64          `json:"todayRevenue"`
	TodayOrders    int64            `json:"todayOrders"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	TablesByStatus map[string]int64 `json:"tablesByStatus"`
	ActiveStaff    int64            `json:"activeStaff"`
	PresentToday   int64            `json:"presentToday"`
	LowStockItems  int64            `json:"lowStockItems"`
	MenuItems      int64            `json:"menuItems"`
}

type DailySales struct {
	Date    string  `bson:"_id" json:"date"`
	Revenue float64 `bson:"revenue" json:"revenue"`
	Orders  int64   `bson:"orders" json:"orders"`
}

type TopItem struct {
	MenuItem string  `bson:"_id" json:"menuItem"`
	Name     string  `bson:"name" json:"name"`
	Quantity int64   `bson:"quantity" json:"quantity"`
	Revenue  float64 `bson:"revenue" json:"revenue"`
}

// Stats runs the dashboard aggregations concurrently. day is the local
// calendar day as [from, to) plus its YYYY-MM-DD form.
func (r *DashboardRepo) Stats(ctx context.Context, from, to time.Time, day string, lowStock int) (*DashboardStats, error) {
	stats := &DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pipeline := mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.D{
				{Key: "paymentStatus", Value: models.PaymentPaid},
				{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lt", Value: to}}},
			}}},
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
				{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
		}
		var rows []struct {
			Revenue float64 `bson:"revenue"`
			Orders  int64   `bson:"orders"`
		}
		if err := r.aggregate(ctx, r.orders, pipeline, &rows); err != nil {
			return fmt.Errorf("cannot compute today's revenue: %w", err)
		}
		if len(rows) > 0 {
			stats.TodayRevenue = roundCents(rows[0].Revenue)
			stats.TodayOrders = rows[0].Orders
		}
		return nil
	})

	g.Go(func() error {
		counts, err := r.countBy(ctx, r.orders, "status", bson.D{
			{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lt", Value: to}}},
		})
		if err != nil {
			return fmt.Errorf("cannot count orders by status: %w", err)
		}
		stats.OrdersByStatus = counts
		return nil
	})

	g.Go(func() error {
		counts, err := r.countBy(ctx, r.tables, "status", bson.D{})
		if err != nil {
			return fmt.Errorf("cannot count tables by status: %w", err)
		}
		stats.TablesByStatus = counts
		return nil
	})

	g.Go(func() error {
		n, err := r.staff.CountDocuments(ctx, bson.M{"isActive": true})
		if err != nil {
			return fmt.Errorf("cannot count staff: %w", err)
		}
		stats.ActiveStaff = n
		return nil
	})

	g.Go(func() error {
		n, err := r.attendance.CountDocuments(ctx, bson.M{"date": day})
		if err != nil {
			return fmt.Errorf("cannot count attendance: %w", err)
		}
		stats.PresentToday = n
		return nil
	})

	g.Go(func() error {
		n, err := r.menu.CountDocuments(ctx, bson.M{"stock": bson.M{"$lte": lowStock}})
		if err != nil {
			return fmt.Errorf("cannot count low stock items: %w", err)
		}
		stats.LowStockItems = n
		return nil
	})

	g.Go(func() error {
		n, err := r.menu.CountDocuments(ctx, bson.M{})
		if err != nil {
			return fmt.Errorf("cannot count menu items: %w", err)
		}
		stats.MenuItems = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Sales returns paid revenue per local day for `days` days ending today.
// Days without sales are present with zero values.
func (r *DashboardRepo) Sales(ctx context.Context, days int, loc *time.Location) ([]DailySales, error) {
	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(days - 1))

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "paymentStatus", Value: models.PaymentPaid},
			{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: start}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$createdAt"},
				{Key: "timezone", Value: loc.String()},
			}}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	var rows []DailySales
	if err := r.aggregate(ctx, r.orders, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("cannot compute sales: %w", err)
	}
	return FillDays(rows, start, days), nil
}

// FillDays expands rows to one entry per day starting at start.
func FillDays(rows []DailySales, start time.Time, days int) []DailySales {
	byDate := make(map[string]DailySales, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}
	out := make([]DailySales, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		row, ok := byDate[date]
		if !ok {
			row = DailySales{Date: date}
		}
		row.Revenue = roundCents(row.Revenue)
		out = append(out, row)
	}
	return out
}

// TopItems ranks menu items by quantity sold in completed orders.
func (r *DashboardRepo) TopItems(ctx context.Context, limit int) ([]TopItem, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "status", Value: models.OrderCompleted}}}},
		bson.D{{Key: "$unwind", Value: "$items"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$items.menuItem"},
			{Key: "name", Value: bson.D{{Key: "$last", Value: "$items.name"}}},
			{Key: "quantity", Value: bson.D{{Key: "$sum", Value: "$items.quantity"}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$multiply", Value: bson.A{"$items.price", "$items.quantity"}},
			}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "quantity", Value: -1}, {Key: "revenue", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
		bson.D{{Key: "$addFields", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$toString", Value: "$_id"}}}}}},
	}

	items := []TopItem{}
	if err := r.aggregate(ctx, r.orders, pipeline, &items); err != nil {
		return nil, fmt.Errorf("cannot compute top items: %w", err)
	}
	for i := range items {
		items[i].Revenue = roundCents(items[i].Revenue)
	}
	return items, nil
}

func (r *DashboardRepo) countBy(ctx context.Context, coll *mongo.Collection, field string, match bson.D) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := r.aggregate(ctx, coll, pipeline, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *DashboardRepo) aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := coll.Aggregate(ctx, pipeline, options.Aggregate())
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
