package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
)

type quantityPayload struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":3,"quantity":2}`))
	var payload quantityPayload
	if err := DecodeJSONBody(req, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.ProductID != 3 || payload.Quantity != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":3,"quantity":2,"price":"0.01"}`))
	var payload quantityPayload
	if err := DecodeJSONBody(req, &payload); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":3,"quantity":0}`))
	var payload quantityPayload
	err := DecodeJSONBody(req, &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := typed.Details().(map[string]string)
	if details["quantity"] != "is required" {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}

func TestParsePathID(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("productId", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	if id, err := ParsePathID(withParam("12"), "productId"); err != nil || id != 12 {
		t.Fatalf("unexpected %d %v", id, err)
	}
	for _, bad := range []string{"", "0", "-1", "abc"} {
		if _, err := ParsePathID(withParam(bad), "productId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %q, got %v", bad, err)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  oats  ", 0); got != "oats" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("barley", 3); got != "bar" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("  basmati\t  rice ", 0); got != "basmati rice" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
	if got := SanitizeString("ragi ₹₹₹", 6); got != "ragi ₹" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
}

func TestDecodeJSONRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"trailing": `{"product_id":1,"quantity":1}{"product_id":2,"quantity":1}`,
		"oversize": `{"product_id":1,"quantity":1,"x":"` + strings.Repeat("a", maxBodyBytes) + `"}`,
	}
	for name, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var payload quantityPayload
		if err := DecodeJSON(req, &payload); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}
