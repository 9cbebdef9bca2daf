package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/graingrove-backend/api/responses"
	"github.com/angelmondragon/graingrove-backend/api/validators"
	"github.com/angelmondragon/graingrove-backend/internal/catalog"
	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	"github.com/angelmondragon/graingrove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

const maxSearchLength = 100

type productResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Image       string      `json:"image"`
	Category    string      `json:"category"`
	Stock       int         `json:"stock"`
	InStock     bool        `json:"in_stock"`
}

func newProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
		InStock:     p.InStock(),
	}
}

// ProductsList browses the catalog with optional category, search and sort query parameters.
func ProductsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query := r.URL.Query()
		sortBy, err := enums.ParseProductSort(query.Get("sort"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").
				WithDetails(map[string]any{"field": "sort"}))
			return
		}

		products := svc.Browse(r.Context(), catalog.Query{
			Category: validators.SanitizeString(query.Get("category"), maxSearchLength),
			Search:   validators.SanitizeString(query.Get("q"), maxSearchLength),
			Sort:     sortBy,
		})

		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			out = append(out, newProductResponse(p))
		}
		responses.WriteSuccess(r.Context(), w, out)
	}
}

// ProductCategories lists the distinct categories, "all" first.
func ProductCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		responses.WriteSuccess(r.Context(), w, svc.Categories(r.Context()))
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, newProductResponse(*product))
	}
}
