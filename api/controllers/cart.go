package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avillegas/storefront-backend/api/middleware"
	"github.com/avillegas/storefront-backend/api/responses"
	"github.com/avillegas/storefront-backend/api/validators"
	cartsvc "github.com/avillegas/storefront-backend/internal/cart"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
	"github.com/avillegas/storefront-backend/pkg/logger"
)

// CartGetOrCreate returns the caller's active cart, creating one when absent.
func CartGetOrCreate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetOrCreateCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// CartGet fetches one of the caller's carts by id.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
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

		record, err := svc.GetCart(r.Context(), userID, cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

type addProductRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartAddProduct adds a product line or bumps its quantity.
func CartAddProduct(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, cartID, productID, err := cartLineParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := addProductRequest{Quantity: 1}
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		record, err := svc.AddProduct(r.Context(), userID, cartID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// Quantity is a pointer so an explicit 0 survives validation; zero and
// negative values behave as removal downstream.
type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartSetQuantity sets the absolute quantity of an existing line.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, cartID, productID, err := cartLineParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateProductQuantity(r.Context(), userID, cartID, productID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// CartRemoveProduct removes a product line from the cart.
func CartRemoveProduct(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, cartID, productID, err := cartLineParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RemoveProduct(r.Context(), userID, cartID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// CartClear empties every line of the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
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

		record, err := svc.ClearCart(r.Context(), userID, cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid subject")
	}
	return parsed, nil
}

func cartLineParams(r *http.Request) (userID, cartID, productID uuid.UUID, err error) {
	userID, err = callerID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, err
	}
	cartID, err = parseIDParam(r, "cartID")
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, err
	}
	productID, err = parseIDParam(r, "productID")
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, err
	}
	return userID, cartID, productID, nil
}
