package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools/base"
)

// Quote is a mock price estimate for the requested part
type Quote struct {
	Part         string    `json:"pieza"`
	Vehicle      string    `json:"vehiculo"`
	BasePrice    float64   `json:"precioBase"`
	YearFactor   float64   `json:"factorAño"`
	Total        float64   `json:"total"`
	Currency     string    `json:"moneda"`
	DeliveryDays int       `json:"diasEntrega"`
	ValidUntil   time.Time `json:"vigencia"`
}

// priceTable is matched in order against the lower-cased part description
var priceTable = []struct {
	keyword string
	price   float64
}{
	{"pastilla", 850},
	{"balata", 850},
	{"disco", 1200},
	{"amortiguador", 1800},
	{"alternador", 3500},
	{"marcha", 3200},
	{"arranque", 3200},
	{"radiador", 2800},
	{"bomba de agua", 1500},
	{"bomba de gasolina", 2400},
	{"clutch", 4200},
	{"embrague", 4200},
	{"bateria", 2200},
	{"batería", 2200},
	{"faro", 1600},
	{"calavera", 1400},
	{"espejo", 900},
	{"bujia", 180},
	{"bujía", 180},
	{"filtro", 250},
	{"banda", 450},
	{"sensor", 950},
	{"termostato", 600},
}

const (
	defaultPartPrice = 1000
	quoteCurrency    = "MXN"
	quoteValidity    = 7 * 24 * time.Hour
)

// BasePrice returns the catalogue price for a part description
func BasePrice(part string) float64 {
	p := strings.ToLower(part)
	for _, entry := range priceTable {
		if strings.Contains(p, entry.keyword) {
			return entry.price
		}
	}
	return defaultPartPrice
}

// YearFactor scales the base price by vehicle age. Recent models cost more
// and very old ones are harder to source.
func YearFactor(year int, now time.Time) float64 {
	if year == 0 {
		return 1.0
	}
	age := now.Year() - year
	switch {
	case age <= 3:
		return 1.25
	case age <= 10:
		return 1.0
	case age <= 20:
		return 0.9
	default:
		return 1.15
	}
}

// NewQuote builds the deterministic quote for info at now
func NewQuote(info session.ClientInfo, now time.Time) *Quote {
	v := info.Vehicle
	if v == nil {
		v = &session.VehicleInfo{}
	}
	base := BasePrice(info.Part)
	factor := YearFactor(v.Year, now)

	days := 1
	if now.Year()-v.Year > 10 {
		days = 3
	}

	return &Quote{
		Part:         info.Part,
		Vehicle:      describeVehicle(v),
		BasePrice:    base,
		YearFactor:   factor,
		Total:        math.Round(base * factor),
		Currency:     quoteCurrency,
		DeliveryDays: days,
		ValidUntil:   now.Add(quoteValidity),
	}
}

var mxPrinter = message.NewPrinter(language.MustParse("es-MX"))

// Summary renders the quote as a customer-facing message
func (q *Quote) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cotización para %s", q.Part)
	if q.Vehicle != "" {
		fmt.Fprintf(&b, " (%s)", q.Vehicle)
	}
	b.WriteString(":\n")
	b.WriteString(mxPrinter.Sprintf("• Precio: $%.2f %s\n", q.Total, q.Currency))
	fmt.Fprintf(&b, "• Entrega estimada: %d día(s) hábil(es)\n", q.DeliveryDays)
	fmt.Fprintf(&b, "• Vigencia: hasta el %s", q.ValidUntil.Format("02/01/2006"))
	return b.String()
}

func describeVehicle(v *session.VehicleInfo) string {
	parts := []string{}
	for _, s := range []string{v.Brand, v.Model, v.SpecialVariant} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if v.Year != 0 {
		parts = append(parts, fmt.Sprint(v.Year))
	}
	if v.Engine != "" {
		parts = append(parts, v.Engine)
	}
	return strings.Join(parts, " ")
}

// QuoteTool produces a mock quote once the part and vehicle are known
type QuoteTool struct {
	base.BaseTool
}

// Parameters returns the parameters struct
func (t *QuoteTool) Parameters() interface{} {
	return &base.ClientInfoParams{}
}

// Execute merges clientInfo over the stored record and prices it
func (t *QuoteTool) Execute(ctx context.Context, args map[string]interface{}, call CallContext) Result {
	update, _ := ExtractClientInfo(args, call.Now)
	info := session.Merge(call.ClientInfo, update)

	var missing []string
	if info.Part == "" {
		missing = append(missing, "piezaNecesaria")
	}
	if info.Vehicle == nil || *info.Vehicle == (session.VehicleInfo{}) {
		missing = append(missing, "vehiculo")
	}
	if len(missing) > 0 {
		res := Failure(NewToolError(CodeMissingData, "Faltan datos para cotizar: "+strings.Join(missing, ", ")))
		res.Data = &ResultData{Missing: missing}
		return res
	}

	quote := NewQuote(info, call.Now)
	return Result{
		Success: true,
		Data: &ResultData{
			Quote:      quote,
			NextStatus: session.StatusGeneratingQuote,
		},
		Message: quote.Summary(),
	}
}
