package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avillegas/storefront-backend/api/middleware"
	checkoutsvc "github.com/avillegas/storefront-backend/internal/checkout"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	result *checkoutsvc.Result
	err    error
	called bool
}

func (s *stubCheckoutService) Execute(ctx context.Context, userID, cartID uuid.UUID) (*checkoutsvc.Result, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func purchaseRequest(userID, cartID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/carts/"+cartID.String()+"/purchase", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("cartID", cartID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if userID != uuid.Nil {
		ctx = middleware.WithUserID(ctx, userID.String())
	}
	return req.WithContext(ctx)
}

func TestCartPurchaseReturnsTicket(t *testing.T) {
	skipped := uuid.New()
	stub := &stubCheckoutService{
		result: &checkoutsvc.Result{
			Ticket:       &checkoutsvc.TicketDTO{ID: uuid.New(), Code: "TCK-123"},
			NotProcessed: []uuid.UUID{skipped},
		},
	}

	rec := httptest.NewRecorder()
	CartPurchase(stub, testLogger()).ServeHTTP(rec, purchaseRequest(uuid.New(), uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !stub.called {
		t.Fatalf("expected checkout to run")
	}

	var payload struct {
		Status  string `json:"status"`
		Payload struct {
			Ticket struct {
				Code string `json:"code"`
			} `json:"ticket"`
			NotProcessed []string `json:"products_not_processed"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Status != "success" {
		t.Fatalf("expected success status, got %s", payload.Status)
	}
	if payload.Payload.Ticket.Code != "TCK-123" {
		t.Fatalf("expected ticket code in payload, got %q", payload.Payload.Ticket.Code)
	}
	if len(payload.Payload.NotProcessed) != 1 || payload.Payload.NotProcessed[0] != skipped.String() {
		t.Fatalf("expected skipped product reported, got %v", payload.Payload.NotProcessed)
	}
}

func TestCartPurchaseNothingFulfillable(t *testing.T) {
	stub := &stubCheckoutService{
		err: pkgerrors.New(pkgerrors.CodeCheckoutFailed, "no cart line could be fulfilled"),
	}

	rec := httptest.NewRecorder()
	CartPurchase(stub, testLogger()).ServeHTTP(rec, purchaseRequest(uuid.New(), uuid.New()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestCartPurchaseEmptyCart(t *testing.T) {
	stub := &stubCheckoutService{
		err: pkgerrors.New(pkgerrors.CodeCartState, "cart is empty"),
	}

	rec := httptest.NewRecorder()
	CartPurchase(stub, testLogger()).ServeHTTP(rec, purchaseRequest(uuid.New(), uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartPurchaseRequiresAuth(t *testing.T) {
	stub := &stubCheckoutService{}

	rec := httptest.NewRecorder()
	CartPurchase(stub, testLogger()).ServeHTTP(rec, purchaseRequest(uuid.Nil, uuid.New()))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if stub.called {
		t.Fatalf("checkout should not run without a user")
	}
}
