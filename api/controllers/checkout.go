package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/graingrove-backend/api/responses"
	"github.com/angelmondragon/graingrove-backend/api/validators"
	"github.com/angelmondragon/graingrove-backend/internal/checkout"
	pricing "github.com/angelmondragon/graingrove-backend/pkg/checkout"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

// CheckoutFlow is the checkout surface the HTTP layer drives.
type CheckoutFlow interface {
	Status(ctx context.Context, sessionID string) (checkout.View, error)
	Validate(form checkout.Form) checkout.FieldErrors
	Submit(ctx context.Context, sessionID string, form checkout.Form) (checkout.State, error)
	Reset(ctx context.Context, sessionID string) error
}

type checkoutSummaryResponse struct {
	Lines     []cartLineResponse `json:"lines"`
	LineCount int                `json:"line_count"`
	ItemCount int                `json:"item_count"`
	quoteResponse
}

type checkoutStatusResponse struct {
	checkout.State
	Summary checkoutSummaryResponse `json:"summary"`
}

type validateResponse struct {
	Valid             bool                 `json:"valid"`
	Errors            checkout.FieldErrors `json:"errors"`
	FirstInvalidField string               `json:"first_invalid_field,omitempty"`
}

// CheckoutStatus returns the session's checkout state and order summary.
func CheckoutStatus(flow CheckoutFlow, policy pricing.ShippingPolicy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := checkoutSession(w, r, flow, logg)
		if !ok {
			return
		}

		view, err := flow.Status(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, checkoutStatusResponse{
			State: view.State,
			Summary: checkoutSummaryResponse{
				Lines:         newLineResponses(view.Summary.Lines),
				LineCount:     view.Summary.LineCount,
				ItemCount:     view.Summary.ItemCount,
				quoteResponse: newQuoteResponse(policy, view.Summary.Quote),
			},
		})
	}
}

// CheckoutValidate checks the form and reports field errors without changing checkout state.
func CheckoutValidate(flow CheckoutFlow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if flow == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var form checkout.Form
		if err := validators.DecodeJSON(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		errs := flow.Validate(form)
		responses.WriteSuccess(r.Context(), w, validateResponse{
			Valid:             errs.Valid(),
			Errors:            errs,
			FirstInvalidField: errs.First(),
		})
	}
}

// CheckoutSubmit places the session's cart as an order.
func CheckoutSubmit(flow CheckoutFlow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := checkoutSession(w, r, flow, logg)
		if !ok {
			return
		}

		var form checkout.Form
		if err := validators.DecodeJSON(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := flow.Submit(r.Context(), sessionID, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(r.Context(), w, http.StatusCreated, state)
	}
}

// CheckoutReset leaves the confirmation and starts over.
func CheckoutReset(flow CheckoutFlow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := checkoutSession(w, r, flow, logg)
		if !ok {
			return
		}
		if err := flow.Reset(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, checkout.Editing())
	}
}

func checkoutSession(w http.ResponseWriter, r *http.Request, flow CheckoutFlow, logg *logger.Logger) (string, bool) {
	if flow == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
		return "", false
	}
	sessionID, err := sessionFrom(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return "", false
	}
	return sessionID, true
}
