package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/application/handlers"
	appsvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/infrastructure/persistence/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	ledger, err := appsvcs.NewLedgerService(store, store, nil, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	InventoryRoutes(r, &appsvcs.Services{Ledger: ledger}, errhttp.New(logger.Discard(), false))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func registerItem(t *testing.T, base, name string) handlers.ItemResponse {
	t.Helper()
	var item handlers.ItemResponse
	if code := do(t, http.MethodPost, base+"/items", map[string]string{"name": name}, &item); code != http.StatusCreated {
		t.Fatalf("register %q: status %d", name, code)
	}
	return item
}

func TestInventoryRoutes_ResistorScenario(t *testing.T) {
	srv := newTestServer(t)
	item := registerItem(t, srv.URL, "Resistor 10k")
	itemURL := srv.URL + "/items/" + item.UUID.String()

	var got handlers.ItemResponse
	if code := do(t, http.MethodGet, itemURL, nil, &got); code != http.StatusOK {
		t.Fatalf("get item: %d", code)
	}
	if got.Name != "Resistor 10k" {
		t.Errorf("name: got %q", got.Name)
	}

	steps := []struct {
		method string
		qty    int64
		want   int64
	}{
		{"ADD", 100, 100},
		{"borrow", 30, 70},
		{"LOST", 5, 65},
	}
	for _, s := range steps {
		var txn handlers.TransactionResponse
		code := do(t, http.MethodPost, itemURL+"/transactions", map[string]any{"method": s.method, "quantity": s.qty}, &txn)
		if code != http.StatusCreated {
			t.Fatalf("record %s: status %d", s.method, code)
		}
		if txn.ItemUUID != item.UUID || txn.Sequence == 0 {
			t.Errorf("unexpected transaction: %+v", txn)
		}

		var q handlers.QuantityResponse
		if code := do(t, http.MethodGet, itemURL+"/quantity", nil, &q); code != http.StatusOK {
			t.Fatalf("quantity: %d", code)
		}
		if q.Quantity != s.want {
			t.Fatalf("after %s %d: quantity %d, want %d", s.method, s.qty, q.Quantity, s.want)
		}
	}

	var history handlers.HistoryResponse
	if code := do(t, http.MethodGet, itemURL+"/transactions", nil, &history); code != http.StatusOK {
		t.Fatalf("history: %d", code)
	}
	if len(history.Transactions) != 3 || history.Transactions[1].Method != "BORROW" {
		t.Fatalf("unexpected history: %+v", history.Transactions)
	}

	var detail handlers.ItemDetailResponse
	if code := do(t, http.MethodGet, itemURL+"/detail", nil, &detail); code != http.StatusOK {
		t.Fatalf("detail: %d", code)
	}
	if detail.Quantity != 65 || len(detail.History) != 3 || detail.Summary.Outstanding != 30 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}

func TestInventoryRoutes_Errors(t *testing.T) {
	srv := newTestServer(t)
	item := registerItem(t, srv.URL, "Widget")
	itemURL := srv.URL + "/items/" + item.UUID.String()
	missingURL := srv.URL + "/items/" + uuid.NewString()

	tests := []struct {
		name   string
		method string
		url    string
		body   any
		want   int
	}{
		{"empty name", http.MethodPost, srv.URL + "/items", map[string]string{"name": ""}, http.StatusUnprocessableEntity},
		{"name with leading space", http.MethodPost, srv.URL + "/items", map[string]string{"name": " Widget"}, http.StatusUnprocessableEntity},
		{"unknown item get", http.MethodGet, missingURL, nil, http.StatusNotFound},
		{"malformed uuid get", http.MethodGet, srv.URL + "/items/not-a-uuid", nil, http.StatusNotFound},
		{"unknown item quantity", http.MethodGet, missingURL + "/quantity", nil, http.StatusNotFound},
		{"unknown item detail", http.MethodGet, missingURL + "/detail", nil, http.StatusNotFound},
		{"unknown item history", http.MethodGet, missingURL + "/transactions", nil, http.StatusNotFound},
		{"unknown item transaction", http.MethodPost, missingURL + "/transactions", map[string]any{"method": "ADD", "quantity": 1}, http.StatusNotFound},
		{"malformed uuid transaction", http.MethodPost, srv.URL + "/items/xyz/transactions", map[string]any{"method": "ADD", "quantity": 1}, http.StatusNotFound},
		{"negative quantity", http.MethodPost, itemURL + "/transactions", map[string]any{"method": "ADD", "quantity": -5}, http.StatusUnprocessableEntity},
		{"unknown method", http.MethodPost, itemURL + "/transactions", map[string]any{"method": "STEAL", "quantity": 1}, http.StatusUnprocessableEntity},
		{"missing quantity", http.MethodPost, itemURL + "/transactions", map[string]any{"method": "ADD"}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			if code := do(t, tt.method, tt.url, tt.body, &body); code != tt.want {
				t.Fatalf("expected %d, got %d (%v)", tt.want, code, body)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("missing error key in %v", body)
			}
		})
	}

	var q handlers.QuantityResponse
	do(t, http.MethodGet, itemURL+"/quantity", nil, &q)
	if q.Quantity != 0 {
		t.Fatalf("rejected requests changed quantity to %d", q.Quantity)
	}
}

func TestInventoryRoutes_ConcurrentAdds(t *testing.T) {
	srv := newTestServer(t)
	item := registerItem(t, srv.URL, "Widget")
	itemURL := srv.URL + "/items/" + item.UUID.String()

	const n = 25
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if code := do(t, http.MethodPost, itemURL+"/transactions", map[string]any{"method": "ADD", "quantity": 1}, nil); code != http.StatusCreated {
				t.Errorf("status %d", code)
			}
		}()
	}
	wg.Wait()

	var q handlers.QuantityResponse
	do(t, http.MethodGet, itemURL+"/quantity", nil, &q)
	if q.Quantity != n {
		t.Fatalf("expected %d, got %d", n, q.Quantity)
	}
}

func TestInventoryRoutes_ErrorCodes(t *testing.T) {
	srv := newTestServer(t)
	item := registerItem(t, srv.URL, "Servo")
	itemURL := srv.URL + "/items/" + item.UUID.String()

	tests := []struct {
		name     string
		url      string
		body     any
		want     int
		wantCode string
	}{
		{"NUL in comments", itemURL + "/transactions", map[string]any{"method": "ADD", "quantity": 1, "comments": "a\x00b"}, http.StatusUnprocessableEntity, "invalid_comments"},
		{"NUL in description", srv.URL + "/items", map[string]string{"name": "Widget", "description": "a\x00b"}, http.StatusUnprocessableEntity, "invalid_description"},
		{"101 multi-byte characters", srv.URL + "/items", map[string]string{"name": strings.Repeat("é", 101)}, http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			if code := do(t, http.MethodPost, tt.url, tt.body, &body); code != tt.want {
				t.Fatalf("expected %d, got %d (%v)", tt.want, code, body)
			}
			if tt.wantCode != "" && body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %q", body["code"], tt.wantCode)
			}
		})
	}

	t.Run("multi-byte name within 100 characters is accepted", func(t *testing.T) {
		name := strings.Repeat("é", 51)
		got := registerItem(t, srv.URL, name)
		if got.Name != name {
			t.Errorf("name = %q, want %q", got.Name, name)
		}
	})
}
