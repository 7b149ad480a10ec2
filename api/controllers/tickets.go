package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avillegas/storefront-backend/api/responses"
	ticketsvc "github.com/avillegas/storefront-backend/internal/tickets"
	"github.com/avillegas/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
	"github.com/avillegas/storefront-backend/pkg/logger"
)

type ticketResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Amount           decimal.Decimal `json:"amount"`
	PurchaseDatetime time.Time       `json:"purchase_datetime"`
	PurchaserID      uuid.UUID       `json:"purchaser_id"`
}

func newTicketResponse(m models.Ticket) ticketResponse {
	return ticketResponse{
		ID:               m.ID,
		Code:             m.Code,
		Amount:           m.Amount,
		PurchaseDatetime: m.PurchaseDatetime,
		PurchaserID:      m.PurchaserID,
	}
}

// TicketList returns the caller's purchase receipts, newest first.
func TicketList(repo ticketsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ticket repository unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := repo.ListByPurchaser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tickets := make([]ticketResponse, len(records))
		for i, record := range records {
			tickets[i] = newTicketResponse(record)
		}

		responses.WriteSuccess(w, map[string]any{"tickets": tickets})
	}
}

// TicketGetByCode looks up one of the caller's receipts by its public code.
func TicketGetByCode(repo ticketsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ticket repository unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ticket code required"))
			return
		}

		record, err := repo.FindByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if record.PurchaserID != userID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found"))
			return
		}

		responses.WriteSuccess(w, newTicketResponse(*record))
	}
}
