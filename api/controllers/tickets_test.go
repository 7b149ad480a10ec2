package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/api/middleware"
	ticketsvc "github.com/avillegas/storefront-backend/internal/tickets"
	"github.com/avillegas/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
)

type stubTicketRepo struct {
	tickets []models.Ticket
}

func (s *stubTicketRepo) WithTx(*gorm.DB) ticketsvc.Repository { return s }

func (s *stubTicketRepo) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	return ticket, nil
}

func (s *stubTicketRepo) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	for i := range s.tickets {
		if s.tickets[i].Code == code {
			return &s.tickets[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
}

func (s *stubTicketRepo) ListByPurchaser(ctx context.Context, purchaserID uuid.UUID) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, ticket := range s.tickets {
		if ticket.PurchaserID == purchaserID {
			out = append(out, ticket)
		}
	}
	return out, nil
}

func ticketFixture(purchaserID uuid.UUID, code string) models.Ticket {
	return models.Ticket{
		ID:               uuid.New(),
		Code:             code,
		Amount:           decimal.RequireFromString("42.50"),
		PurchaseDatetime: time.Now().UTC(),
		PurchaserID:      purchaserID,
	}
}

func TestTicketListFiltersByCaller(t *testing.T) {
	userID := uuid.New()
	repo := &stubTicketRepo{tickets: []models.Ticket{
		ticketFixture(userID, "TCK-A"),
		ticketFixture(uuid.New(), "TCK-B"),
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	TicketList(repo, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Payload struct {
			Tickets []struct {
				Code string `json:"code"`
			} `json:"tickets"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(payload.Payload.Tickets) != 1 || payload.Payload.Tickets[0].Code != "TCK-A" {
		t.Fatalf("expected only the caller's ticket, got %v", payload.Payload.Tickets)
	}
}

func TestTicketGetByCodeHidesForeignTickets(t *testing.T) {
	owner := uuid.New()
	repo := &stubTicketRepo{tickets: []models.Ticket{ticketFixture(owner, "TCK-A")}}

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/TCK-A", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("code", "TCK-A")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, uuid.NewString())
	rec := httptest.NewRecorder()
	TicketGetByCode(repo, testLogger()).ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign ticket, got %d", rec.Code)
	}
}
