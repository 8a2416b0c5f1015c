// Package orders produces a synthetic orders dataset and a demo client that
// asks the API questions about it.
package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Header matches the column names of the source dataset the loader expects.
var Header = []string{"Order_ID", "Order_date", "Product_Category", "Customer_Name"}

var (
	categories = []string{"Apparel", "Cosmetics & Personal Care", "Groceries", "Toys & Games", "Electronics"}
	brands     = []string{"ElecHouse", "MobileMax", "AeroTechs", "ElegantEyes", "UrbanWear", "FreshCart", "PlayPal"}
)

type Order struct {
	OrderID         int64
	OrderDate       time.Time
	ProductCategory string
	CustomerName    string
}

func (o Order) fields() []string {
	return []string{
		strconv.FormatInt(o.OrderID, 10),
		o.OrderDate.Format(time.DateOnly),
		o.ProductCategory,
		o.CustomerName,
	}
}

type Generator struct {
	rnd       *rand.Rand
	customers int
	startDate time.Time
	days      int
	lastID    int64
}

func NewGenerator(seed int64, customers int, startDate time.Time, days int) *Generator {
	if customers <= 0 {
		customers = 1
	}
	if days <= 0 {
		days = 1
	}
	return &Generator{
		rnd:       rand.New(rand.NewSource(seed)),
		customers: customers,
		startDate: startDate.UTC().Truncate(24 * time.Hour),
		days:      days,
		lastID:    100,
	}
}

// NextOrder returns the next order. Order ids increase with random gaps.
func (g *Generator) NextOrder() Order {
	g.lastID += int64(g.rnd.Intn(9) + 1)
	return Order{
		OrderID:         g.lastID,
		OrderDate:       g.startDate.AddDate(0, 0, g.rnd.Intn(g.days)),
		ProductCategory: g.pickCategory(),
		CustomerName:    g.pickCustomer(),
	}
}

func (g *Generator) pickCategory() string {
	p := g.rnd.Intn(100)
	switch {
	case p < 30:
		return categories[0]
	case p < 45:
		return categories[1]
	case p < 70:
		return categories[2]
	case p < 82:
		return categories[3]
	default:
		return categories[4]
	}
}

func (g *Generator) pickCustomer() string {
	n := g.rnd.Intn(g.customers) + 1
	if n <= len(brands) {
		return brands[n-1]
	}
	return fmt.Sprintf("Cust-%03d", n)
}

// WriteCSV writes the header and rows orders separated by semicolons.
func (g *Generator) WriteCSV(w io.Writer, rows int) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < rows; i++ {
		if err := writer.Write(g.NextOrder().fields()); err != nil {
			return fmt.Errorf("write order %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (g *Generator) WriteCSVFile(path string, rows int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := g.WriteCSV(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
