package responses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
	"github.com/avillegas/storefront-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Status != types.StatusSuccess {
		t.Fatalf("expected success status, got %s", envelope.Status)
	}
}

func TestWriteErrorTypedMessagePassthrough(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeLineNotFound, "product is not in the cart")
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Status != types.StatusError {
		t.Fatalf("expected error status, got %s", envelope.Status)
	}
	if envelope.Code != string(pkgerrors.CodeLineNotFound) {
		t.Fatalf("unexpected code %s", envelope.Code)
	}
	if envelope.Message != "product is not in the cart" {
		t.Fatalf("unexpected message %s", envelope.Message)
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInternal, "sql: connection refused on 10.0.0.4")
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Message == "sql: connection refused on 10.0.0.4" {
		t.Fatal("internal detail must not leak to clients")
	}
}

func TestWriteErrorUntypedBecomesInternal(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, context.DeadlineExceeded)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestWriteErrorDetailsForStockError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{"requested": 4, "available": 2})
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Details == nil {
		t.Fatal("expected stock details to be exposed")
	}
}
