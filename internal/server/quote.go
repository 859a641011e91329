package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	catalogdomain "github.com/smallbiznis/courierfare/internal/catalog/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
	quotedomain "github.com/smallbiznis/courierfare/internal/quote/domain"
)

type quoteOrderRequest struct {
	OrderType         string          `json:"order_type"`
	DeliveryLatitude  float64         `json:"delivery_latitude"`
	DeliveryLongitude float64         `json:"delivery_longitude"`
	Items             []quoteItemInput `json:"items"`
}

type quoteItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	// Price is a client-supplied fallback used only when the product is not
	// in the catalog; catalog prices always win.
	Price *float64 `json:"price,omitempty"`
}

type quoteLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
}

type quoteTotals struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

func (s *Server) QuoteOrder(c *gin.Context) {
	var req quoteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	lines, totals, err := s.priceItems(c, req.Items)
	if err != nil {
		abortWithError(c, err)
		return
	}

	destination := geo.Location{Lat: req.DeliveryLatitude, Lng: req.DeliveryLongitude}
	quote, err := s.quoteSvc.Quote(c.Request.Context(), quotedomain.OrderType(req.OrderType), destination)
	if err != nil {
		abortWithError(c, err)
		return
	}

	totals.DeliveryFee = quote.DeliveryFee
	totals.Total = round2(totals.Subtotal + totals.Tax + totals.DeliveryFee)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"quote":   quote,
		"items":   lines,
		"totals":  totals,
	})
}

func (s *Server) priceItems(c *gin.Context, items []quoteItemInput) ([]quoteLine, quoteTotals, error) {
	lines := []quoteLine{}
	var totals quoteTotals
	if len(items) == 0 {
		return lines, totals, nil
	}

	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		id, err := snowflake.ParseString(item.ProductID)
		if err != nil {
			return nil, totals, catalogdomain.ErrNotFound
		}
		ids = append(ids, id)
	}

	products, err := s.catalog.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		return nil, totals, err
	}
	byID := make(map[snowflake.ID]catalogdomain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for i, item := range items {
		qty := item.Qty
		if qty <= 0 {
			qty = 1
		}

		line := quoteLine{ProductID: item.ProductID, Quantity: qty}
		product, ok := byID[ids[i]]
		switch {
		case ok:
			line.Name = product.Name
			line.UnitPrice = product.Price
		case item.Price != nil:
			line.UnitPrice = *item.Price
		default:
			return nil, totals, catalogdomain.ErrNotFound
		}

		line.Subtotal = round2(line.UnitPrice * float64(qty))
		if ok {
			line.Tax = round2(line.Subtotal * product.TaxRate / 100)
		}
		lines = append(lines, line)
		totals.Subtotal = round2(totals.Subtotal + line.Subtotal)
		totals.Tax = round2(totals.Tax + line.Tax)
	}
	return lines, totals, nil
}

type attachReferenceRequest struct {
	RequestID string `json:"request_id"`
}

// AttachOrderReference links a previously issued quote to a placed order so
// the audit trail survives checkout.
func (s *Server) AttachOrderReference(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		abortBadRequest(c, "invalid order id")
		return
	}

	var req attachReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RequestID == "" {
		abortBadRequest(c, "request_id is required")
		return
	}

	if err := s.auditSvc.AttachOrder(c.Request.Context(), req.RequestID, orderID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
