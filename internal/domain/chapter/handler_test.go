package chapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/inkleaf/fiction-api/internal/domain/ledger"
	"github.com/inkleaf/fiction-api/internal/domain/unlock"
)

type fakeUnlocker struct {
	result *unlock.Result
	err    error
}

func (f *fakeUnlocker) Unlock(ctx context.Context, accountID, bookID uuid.UUID, chapterNumber int) (*unlock.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func postUnlock(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/unlock", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Unlock(rec, req)
	return rec
}

func unlockBody(accountID, bookID uuid.UUID, chapter int) string {
	b, _ := json.Marshal(map[string]interface{}{
		"accountId":     accountID.String(),
		"bookId":        bookID.String(),
		"chapterNumber": chapter,
	})
	return string(b)
}

func TestUnlockEndpointSuccess(t *testing.T) {
	h := NewHandler(nil, &fakeUnlocker{result: &unlock.Result{
		Credits:      50,
		PaidChapters: []string{"b1:6"},
	}})

	rec := postUnlock(t, h, unlockBody(uuid.New(), uuid.New(), 6))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Success      bool     `json:"success"`
			Credits      int      `json:"credits"`
			PaidChapters []string `json:"paidChapters"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Data.Success || resp.Data.Credits != 50 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(resp.Data.PaidChapters) != 1 {
		t.Fatalf("paidChapters missing: %s", rec.Body.String())
	}
}

func TestUnlockEndpointFreeChapter(t *testing.T) {
	h := NewHandler(nil, &fakeUnlocker{result: &unlock.Result{Free: true}})

	rec := postUnlock(t, h, unlockBody(uuid.New(), uuid.New(), 3))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"free":true`) {
		t.Fatalf("free flag missing: %s", rec.Body.String())
	}
}

func TestUnlockEndpointInsufficientCredits(t *testing.T) {
	h := NewHandler(nil, &fakeUnlocker{
		err: &ledger.InsufficientCreditsError{Required: 50, Available: 10},
	})

	rec := postUnlock(t, h, unlockBody(uuid.New(), uuid.New(), 6))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, "INSUFFICIENT_CREDITS") {
		t.Fatalf("missing error code: %s", body)
	}
	if !strings.Contains(body, `"required":"50"`) || !strings.Contains(body, `"available":"10"`) {
		t.Fatalf("missing amounts: %s", body)
	}
}

func TestUnlockEndpointValidation(t *testing.T) {
	h := NewHandler(nil, &fakeUnlocker{})

	rec := postUnlock(t, h, `{"accountId":"not-a-uuid","bookId":"also-bad","chapterNumber":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	rec = postUnlock(t, h, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUnlockEndpointMissingFields(t *testing.T) {
	h := NewHandler(nil, &fakeUnlocker{})

	rec := postUnlock(t, h, `{"bookId":"`+uuid.New().String()+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing fields must be a 400, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, "VALIDATION_ERROR") {
		t.Fatalf("missing error code: %s", body)
	}
	if !strings.Contains(body, "accountId") || !strings.Contains(body, "chapterNumber") {
		t.Fatalf("missing field details: %s", body)
	}
}
