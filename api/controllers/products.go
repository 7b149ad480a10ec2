package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avillegas/storefront-backend/api/responses"
	"github.com/avillegas/storefront-backend/api/validators"
	product "github.com/avillegas/storefront-backend/internal/products"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
	"github.com/avillegas/storefront-backend/pkg/logger"
)

const (
	maxPageLimit     = 100
	defaultPageLimit = 20
)

// ProductList serves the paginated catalog listing.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := product.ListFilters{
			Category:   validators.SanitizeString(r.URL.Query().Get("category"), 64),
			ActiveOnly: !strings.EqualFold(r.URL.Query().Get("include_inactive"), "true"),
			Limit:      limit,
			Offset:     offset,
		}

		result, err := svc.ListProducts(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductGet serves a single product by id.
func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

type createProductRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Code        string   `json:"code" validate:"required,min=1,max=64"`
	Price       string   `json:"price" validate:"required"`
	Stock       int      `json:"stock" validate:"min=0"`
	Category    string   `json:"category" validate:"max=64"`
	Thumbnails  []string `json:"thumbnails"`
}

// ProductCreate registers a new catalog product.
func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(payload.Price))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}

		record, err := svc.CreateProduct(r.Context(), product.CreateProductInput{
			Title:       validators.SanitizeString(payload.Title, 200),
			Description: validators.SanitizeString(payload.Description, 2000),
			Code:        payload.Code,
			Price:       price,
			Stock:       payload.Stock,
			Category:    validators.SanitizeString(payload.Category, 64),
			Thumbnails:  payload.Thumbnails,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

type updateProductRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	Price       *string   `json:"price"`
	Stock       *int      `json:"stock" validate:"omitempty,min=0"`
	IsActive    *bool     `json:"is_active"`
	Category    *string   `json:"category" validate:"omitempty,max=64"`
	Thumbnails  *[]string `json:"thumbnails"`
}

// ProductUpdate applies a partial update to a product.
func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := product.UpdateProductInput{
			Title:       payload.Title,
			Description: payload.Description,
			Stock:       payload.Stock,
			IsActive:    payload.IsActive,
			Category:    payload.Category,
			Thumbnails:  payload.Thumbnails,
		}
		if payload.Price != nil {
			price, priceErr := decimal.NewFromString(strings.TrimSpace(*payload.Price))
			if priceErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, priceErr, "invalid price"))
				return
			}
			input.Price = &price
		}

		record, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// ProductDelete deactivates a product so it no longer sells.
func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return parsed, nil
}
