package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	product "github.com/avillegas/storefront-backend/internal/products"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
)

type stubProductService struct {
	product.Service

	createInput  product.CreateProductInput
	createCalled bool
	createErr    error
	listFilters  product.ListFilters
	listResult   *product.ProductListResult
	getResult    *product.ProductDTO
	deactivated  uuid.UUID
}

func (s *stubProductService) CreateProduct(ctx context.Context, input product.CreateProductInput) (*product.ProductDTO, error) {
	s.createCalled = true
	s.createInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &product.ProductDTO{ID: uuid.New(), Title: input.Title, Code: input.Code}, nil
}

func (s *stubProductService) ListProducts(ctx context.Context, filters product.ListFilters) (*product.ProductListResult, error) {
	s.listFilters = filters
	return s.listResult, nil
}

func (s *stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*product.ProductDTO, error) {
	if s.getResult == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.getResult, nil
}

func (s *stubProductService) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	s.deactivated = productID
	return nil
}

func TestProductListDefaults(t *testing.T) {
	stub := &stubProductService{listResult: &product.ProductListResult{Products: []product.ProductDTO{}}}

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	ProductList(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.listFilters.Limit != defaultPageLimit {
		t.Fatalf("expected default limit %d, got %d", defaultPageLimit, stub.listFilters.Limit)
	}
	if !stub.listFilters.ActiveOnly {
		t.Fatalf("expected active-only listing by default")
	}
}

func TestProductListRejectsOversizedLimit(t *testing.T) {
	stub := &stubProductService{listResult: &product.ProductListResult{}}

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=500", nil)
	rec := httptest.NewRecorder()
	ProductList(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestProductCreateParsesPrice(t *testing.T) {
	stub := &stubProductService{}

	body := `{"title":"Widget","code":"WID-1","price":"19.99","stock":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ProductCreate(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if !stub.createCalled {
		t.Fatalf("expected CreateProduct to be invoked")
	}
	if stub.createInput.Price.StringFixed(2) != "19.99" {
		t.Fatalf("expected price 19.99, got %s", stub.createInput.Price)
	}
	if stub.createInput.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", stub.createInput.Stock)
	}
}

func TestProductCreateRejectsBadPrice(t *testing.T) {
	stub := &stubProductService{}

	body := `{"title":"Widget","code":"WID-1","price":"not-a-number"}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ProductCreate(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if stub.createCalled {
		t.Fatalf("service should not run on invalid price")
	}
}

func TestProductCreateRejectsMissingFields(t *testing.T) {
	stub := &stubProductService{}

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"title":"Widget"}`))
	rec := httptest.NewRecorder()
	ProductCreate(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	var payload struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code, got %s", payload.Code)
	}
	if payload.Details["code"] == "" {
		t.Fatalf("expected field detail for code, got %v", payload.Details)
	}
}

func TestProductDeleteDeactivates(t *testing.T) {
	stub := &stubProductService{}
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+productID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productID", productID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	ProductDelete(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.deactivated != productID {
		t.Fatalf("expected deactivation of %s, got %s", productID, stub.deactivated)
	}
}

func TestProductGetNotFound(t *testing.T) {
	stub := &stubProductService{}
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productID", productID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	ProductGet(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
