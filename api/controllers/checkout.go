package controllers

import (
	"net/http"

	"github.com/avillegas/storefront-backend/api/responses"
	checkoutsvc "github.com/avillegas/storefront-backend/internal/checkout"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
	"github.com/avillegas/storefront-backend/pkg/logger"
)

// CartPurchase executes checkout for a cart and returns the ticket.
func CartPurchase(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cartID, err := parseIDParam(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), userID, cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
