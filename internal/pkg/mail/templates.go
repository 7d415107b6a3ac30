package mail

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateOrderPaidBuyer  = "order_paid_buyer"
	TemplateOrderPaidSeller = "order_paid_seller"
)

// OrderEmail is the data rendered into order notification emails.
type OrderEmail struct {
	OrderID         string
	ProductName     string
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	SellerName      string
	Total           decimal.Decimal
	Currency        string
}

// TotalDisplay formats the total with two decimals.
func (o OrderEmail) TotalDisplay() string {
	return o.Total.StringFixed(2)
}

// Templates renders the embedded email templates.
type Templates struct {
	engine *html.Engine
}

func NewTemplates() (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}
	return &Templates{engine: engine}, nil
}

func (t *Templates) Render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.engine.Render(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
