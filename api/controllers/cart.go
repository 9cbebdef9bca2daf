package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/graingrove-backend/api/middleware"
	"github.com/angelmondragon/graingrove-backend/api/responses"
	"github.com/angelmondragon/graingrove-backend/api/validators"
	cartsvc "github.com/angelmondragon/graingrove-backend/internal/cart"
	pricing "github.com/angelmondragon/graingrove-backend/pkg/checkout"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartLineResponse struct {
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name"`
	UnitPrice json.Number `json:"unit_price"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image"`
	LineTotal json.Number `json:"line_total"`
}

type quoteResponse struct {
	Subtotal     json.Number `json:"subtotal"`
	Shipping     json.Number `json:"shipping"`
	Total        json.Number `json:"total"`
	FreeShipping bool        `json:"free_shipping"`
	Currency     string      `json:"currency"`
	Display      struct {
		Subtotal string `json:"subtotal"`
		Shipping string `json:"shipping"`
		Total    string `json:"total"`
	} `json:"display"`
}

type cartResponse struct {
	Lines     []cartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	quoteResponse
}

func newLineResponses(lines []cartsvc.Line) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, cartLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: money(line.UnitPrice),
			Quantity:  line.Quantity,
			Image:     line.ImageRef,
			LineTotal: money(line.Total()),
		})
	}
	return out
}

func newQuoteResponse(policy pricing.ShippingPolicy, quote pricing.Quote) quoteResponse {
	resp := quoteResponse{
		Subtotal:     money(quote.Subtotal),
		Shipping:     money(quote.Shipping),
		Total:        money(quote.Total),
		FreeShipping: quote.FreeShipping,
		Currency:     quote.Currency,
	}
	resp.Display.Subtotal = policy.Format(quote.Subtotal)
	resp.Display.Shipping = policy.Format(quote.Shipping)
	resp.Display.Total = policy.Format(quote.Total)
	return resp
}

func newCartResponse(policy pricing.ShippingPolicy, c cartsvc.Cart) cartResponse {
	return cartResponse{
		Lines:         newLineResponses(c.Lines),
		ItemCount:     c.ItemCount(),
		quoteResponse: newQuoteResponse(policy, policy.Quote(c.Subtotal())),
	}
}

func sessionFrom(r *http.Request) (string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	return sessionID, nil
}

// CartView returns the session's cart with its totals.
func CartView(svc cartsvc.Service, policy pricing.ShippingPolicy, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, policy, logg, func(r *http.Request, sessionID string) (cartsvc.Cart, error) {
		return svc.Get(r.Context(), sessionID)
	})
}

// CartAddItem adds a product to the cart, merging with an existing line.
func CartAddItem(svc cartsvc.Service, policy pricing.ShippingPolicy, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, policy, logg, func(r *http.Request, sessionID string) (cartsvc.Cart, error) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return cartsvc.Cart{}, err
		}
		return svc.AddItem(r.Context(), sessionID, payload.ProductID, payload.Quantity)
	})
}

// CartUpdateItem sets a line's quantity. Quantities below one leave the cart unchanged.
func CartUpdateItem(svc cartsvc.Service, policy pricing.ShippingPolicy, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, policy, logg, func(r *http.Request, sessionID string) (cartsvc.Cart, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return cartsvc.Cart{}, err
		}
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return cartsvc.Cart{}, err
		}
		return svc.UpdateItem(r.Context(), sessionID, productID, payload.Quantity)
	})
}

func CartRemoveItem(svc cartsvc.Service, policy pricing.ShippingPolicy, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, policy, logg, func(r *http.Request, sessionID string) (cartsvc.Cart, error) {
		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			return cartsvc.Cart{}, err
		}
		return svc.RemoveItem(r.Context(), sessionID, productID)
	})
}

func CartClear(svc cartsvc.Service, policy pricing.ShippingPolicy, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, policy, logg, func(r *http.Request, sessionID string) (cartsvc.Cart, error) {
		return svc.Clear(r.Context(), sessionID)
	})
}

func cartHandler(svc cartsvc.Service, policy pricing.ShippingPolicy, logg *logger.Logger, op func(*http.Request, string) (cartsvc.Cart, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, err := sessionFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := op(r, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, newCartResponse(policy, current))
	}
}
