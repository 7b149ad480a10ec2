package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avillegas/storefront-backend/api/middleware"
	cartsvc "github.com/avillegas/storefront-backend/internal/cart"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
	"github.com/avillegas/storefront-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubCartService struct {
	cartsvc.Service

	addCalled   bool
	addQty      int
	addErr      error
	setQty      int
	removeCalls int
	record      *cartsvc.CartDTO
}

func (s *stubCartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.record, nil
}

func (s *stubCartService) GetCart(ctx context.Context, userID, cartID uuid.UUID) (*cartsvc.CartDTO, error) {
	if s.record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return s.record, nil
}

func (s *stubCartService) AddProduct(ctx context.Context, userID, cartID, productID uuid.UUID, qty int) (*cartsvc.CartDTO, error) {
	s.addCalled = true
	s.addQty = qty
	if s.addErr != nil {
		return nil, s.addErr
	}
	return s.record, nil
}

func (s *stubCartService) UpdateProductQuantity(ctx context.Context, userID, cartID, productID uuid.UUID, qty int) (*cartsvc.CartDTO, error) {
	s.setQty = qty
	return s.record, nil
}

func (s *stubCartService) RemoveProduct(ctx context.Context, userID, cartID, productID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.removeCalls++
	return s.record, nil
}

func (s *stubCartService) ClearCart(ctx context.Context, userID, cartID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.record, nil
}

func lineRequest(method string, userID, cartID, productID uuid.UUID, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/carts/"+cartID.String()+"/products/"+productID.String(), reader)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("cartID", cartID.String())
	routeCtx.URLParams.Add("productID", productID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if userID != uuid.Nil {
		ctx = middleware.WithUserID(ctx, userID.String())
	}
	return req.WithContext(ctx)
}

func TestCartAddProductDefaultsQuantity(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{ID: uuid.New()}}
	req := lineRequest(http.MethodPost, uuid.New(), uuid.New(), uuid.New(), "")
	rec := httptest.NewRecorder()

	CartAddProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !stub.addCalled {
		t.Fatalf("expected AddProduct to be invoked")
	}
	if stub.addQty != 1 {
		t.Fatalf("expected default quantity 1, got %d", stub.addQty)
	}
}

func TestCartAddProductHonorsBodyQuantity(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{ID: uuid.New()}}
	req := lineRequest(http.MethodPost, uuid.New(), uuid.New(), uuid.New(), `{"quantity":3}`)
	rec := httptest.NewRecorder()

	CartAddProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.addQty != 3 {
		t.Fatalf("expected quantity 3, got %d", stub.addQty)
	}
}

func TestCartAddProductRequiresAuth(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{}}
	req := lineRequest(http.MethodPost, uuid.Nil, uuid.New(), uuid.New(), "")
	rec := httptest.NewRecorder()

	CartAddProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if stub.addCalled {
		t.Fatalf("service should not be called without a user")
	}
}

func TestCartAddProductRejectsInvalidCartID(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{}}
	req := httptest.NewRequest(http.MethodPost, "/api/carts/not-a-uuid/products/"+uuid.NewString(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("cartID", "not-a-uuid")
	routeCtx.URLParams.Add("productID", uuid.NewString())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, uuid.NewString())
	rec := httptest.NewRecorder()

	CartAddProduct(stub, testLogger()).ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartAddProductSurfacesInsufficientStock(t *testing.T) {
	stub := &stubCartService{
		addErr: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"available": 2}),
	}
	req := lineRequest(http.MethodPost, uuid.New(), uuid.New(), uuid.New(), `{"quantity":5}`)
	rec := httptest.NewRecorder()

	CartAddProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	var payload struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock code, got %s", payload.Code)
	}
	if payload.Details["available"] != float64(2) {
		t.Fatalf("expected available detail, got %v", payload.Details)
	}
}

func TestCartSetQuantityPassesValue(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{}}
	req := lineRequest(http.MethodPut, uuid.New(), uuid.New(), uuid.New(), `{"quantity":7}`)
	rec := httptest.NewRecorder()

	CartSetQuantity(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.setQty != 7 {
		t.Fatalf("expected quantity 7, got %d", stub.setQty)
	}
}

func TestCartSetQuantityZeroReachesService(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{}, setQty: -99}
	req := lineRequest(http.MethodPut, uuid.New(), uuid.New(), uuid.New(), `{"quantity":0}`)
	rec := httptest.NewRecorder()

	CartSetQuantity(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.setQty != 0 {
		t.Fatalf("expected quantity 0 passed through, got %d", stub.setQty)
	}
}

func TestCartSetQuantityNegativeReachesService(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{}}
	req := lineRequest(http.MethodPut, uuid.New(), uuid.New(), uuid.New(), `{"quantity":-1}`)
	rec := httptest.NewRecorder()

	CartSetQuantity(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.setQty != -1 {
		t.Fatalf("expected quantity -1 passed through, got %d", stub.setQty)
	}
}

func TestCartSetQuantityRequiresField(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{}, setQty: -99}
	req := lineRequest(http.MethodPut, uuid.New(), uuid.New(), uuid.New(), `{}`)
	rec := httptest.NewRecorder()

	CartSetQuantity(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if stub.setQty != -99 {
		t.Fatalf("service should not run without a quantity field")
	}
}

func TestCartRemoveProductAcks(t *testing.T) {
	stub := &stubCartService{record: &cartsvc.CartDTO{}}
	req := lineRequest(http.MethodDelete, uuid.New(), uuid.New(), uuid.New(), "")
	rec := httptest.NewRecorder()

	CartRemoveProduct(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.removeCalls != 1 {
		t.Fatalf("expected one remove call, got %d", stub.removeCalls)
	}
}
