package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tracky/internal/calendar"
	"tracky/internal/core"
	"tracky/internal/ledger"
	"tracky/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc, err := ledger.NewService(context.Background(), memory.New(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	s := NewServer(":0", svc, 12, calendar.LayoutCycle)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

func doRequest(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func todayISO() string {
	return calendar.FormatISODate(time.Now())
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz: expected 200, got %d", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["status"] != "ready" {
		t.Fatalf("expected ready status, got %v", body["status"])
	}
}

func TestListCycles(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/cycles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Card   core.Card               `json:"card"`
		Cycles []calendar.BillingCycle `json:"cycles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Cycles) != 12 {
		t.Fatalf("expected 12 cycles, got %d", len(body.Cycles))
	}
	if body.Card.Name != "Cartão principal" {
		t.Fatalf("expected the seed card, got %q", body.Card.Name)
	}

	rec = doRequest(s, http.MethodGet, "/api/cycles?count=3&layout=month", nil)
	var small struct {
		Cycles []calendar.BillingCycle `json:"cycles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &small); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(small.Cycles) != 3 {
		t.Fatalf("expected 3 cycles, got %d", len(small.Cycles))
	}

	rec = doRequest(s, http.MethodGet, "/api/cycles?card=unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown card: expected 404, got %d", rec.Code)
	}
}

func TestCurrentCycle(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/cycles/current", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Cycle calendar.BillingCycle `json:"cycle"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Cycle.ContainsISODate(todayISO()) {
		t.Fatalf("current cycle does not contain today")
	}
	if body.Cycle.Status != calendar.StatusOpen {
		t.Fatalf("expected open cycle, got %v", body.Cycle.Status)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)

	payload := fmt.Sprintf(`{"date":%q,"title":"Mercado","amount":"25.00","type":"expense","category":"Alimentação"}`, todayISO())
	rec := doRequest(s, http.MethodPost, "/api/transactions", []byte(payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Transaction](t, rec)
	if created.ID == "" || created.Amount.Cents != -2500 {
		t.Fatalf("unexpected created transaction %+v", created)
	}

	rec = doRequest(s, http.MethodGet, "/api/transactions", nil)
	var list struct {
		Transactions []core.Transaction `json:"transactions"`
		Count        int                `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 1 || list.Transactions[0].Title != "Mercado" {
		t.Fatalf("unexpected list %+v", list)
	}

	update := fmt.Sprintf(`{"date":%q,"title":"Mercado Central","amount":"30.00","type":"expense"}`, todayISO())
	rec = doRequest(s, http.MethodPut, "/api/transactions/"+created.ID, []byte(update))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/api/transactions?q=central", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 1 || list.Transactions[0].Amount.Cents != -3000 {
		t.Fatalf("update not applied: %+v", list)
	}

	rec = doRequest(s, http.MethodPut, "/api/transactions/"+created.ID+"?scope=sideways", []byte(update))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid scope: expected 400, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec = doRequest(s, http.MethodGet, "/api/transactions", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 0 {
		t.Fatalf("expected empty ledger, got %d", list.Count)
	}
}

func TestCreateTransactionRejectsBadPayload(t *testing.T) {
	s := newTestServer(t)

	bads := []string{
		`broken`,
		`{"date":"2024-03-10","title":"x","amount":"abc"}`,
		`{"date":"not-a-date","title":"x","amount":"10","type":"income"}`,
		`{"date":"2024-03-10","title":"","amount":"10","type":"income"}`,
	}
	for _, body := range bads {
		rec := doRequest(s, http.MethodPost, "/api/transactions", []byte(body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestMarkCyclePaidFlow(t *testing.T) {
	s := newTestServer(t)
	card := s.ledger.Cards()[0]

	// No credit spend yet: paying is a conflict.
	rec := doRequest(s, http.MethodGet, "/api/cycles/current", nil)
	var current struct {
		Cycle calendar.BillingCycle `json:"cycle"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &current); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec = doRequest(s, http.MethodPost, "/api/cycles/"+current.Cycle.ID+"/pay", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("empty cycle: expected 409, got %d", rec.Code)
	}

	payload := fmt.Sprintf(`{"date":%q,"title":"Compra online","amount":"300","type":"expense","paymentMethod":"credit","cardId":%q}`,
		todayISO(), card.ID)
	rec = doRequest(s, http.MethodPost, "/api/transactions", []byte(payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/api/cycles/"+current.Cycle.ID+"/invoice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice: expected 200, got %d", rec.Code)
	}
	var invoice struct {
		Cycle            calendar.BillingCycle `json:"cycle"`
		Transactions     []core.Transaction    `json:"transactions"`
		UsedLimitPercent float64               `json:"usedLimitPercent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &invoice); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(invoice.Transactions) != 1 || invoice.Cycle.CreditTotal.Cents != 30000 {
		t.Fatalf("unexpected invoice %+v", invoice)
	}
	if invoice.UsedLimitPercent != 5 {
		t.Fatalf("expected 5%% of the 6000 limit, got %v", invoice.UsedLimitPercent)
	}

	rec = doRequest(s, http.MethodPost, "/api/cycles/"+current.Cycle.ID+"/pay", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("pay: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var paid struct {
		Payment core.Transaction `json:"payment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &paid); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if paid.Payment.Amount.Cents != -30000 || !paid.Payment.IsInvoicePayment {
		t.Fatalf("unexpected payment %+v", paid.Payment)
	}

	// The rebuilt cycle reports paid, and paying again conflicts.
	rec = doRequest(s, http.MethodGet, "/api/cycles/current", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &current); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if current.Cycle.Status != calendar.StatusPaid {
		t.Fatalf("expected paid cycle, got %v", current.Cycle.Status)
	}
	rec = doRequest(s, http.MethodPost, "/api/cycles/"+current.Cycle.ID+"/pay", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("double pay: expected 409, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/cycles/no-such-cycle/pay", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown cycle: expected 404, got %d", rec.Code)
	}
}

func TestCardEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/cards",
		[]byte(`{"name":"Secundário","limit":"2000","closingDay":20,"dueDay":27}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Card](t, rec)
	if created.ID == "" || created.Limit.Cents != 200000 {
		t.Fatalf("unexpected card %+v", created)
	}

	rec = doRequest(s, http.MethodGet, "/api/cards", nil)
	var list struct {
		Cards []core.Card `json:"cards"`
		Count int         `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 2 {
		t.Fatalf("expected seed plus created, got %d", list.Count)
	}

	rec = doRequest(s, http.MethodPut, "/api/cards/"+created.ID,
		[]byte(`{"name":"Secundário","limit":"2500","closingDay":20,"dueDay":27}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}
	got, ok := s.ledger.CardByID(created.ID)
	if !ok || got.Limit.Cents != 250000 {
		t.Fatalf("update not applied: %+v", got)
	}

	rec = doRequest(s, http.MethodPost, "/api/cards", []byte(`{"name":"","limit":"10"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid card: expected 400, got %d", rec.Code)
	}

	// Cycles for the new card use its closing day.
	rec = doRequest(s, http.MethodGet, "/api/cycles?card="+created.ID+"&count=1", nil)
	var cycles struct {
		Cycles []calendar.BillingCycle `json:"cycles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cycles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cycles.Cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles.Cycles))
	}
}

func TestCyclesChart(t *testing.T) {
	s := newTestServer(t)

	payload := fmt.Sprintf(`{"date":%q,"title":"Salário","amount":"3000","type":"income"}`, todayISO())
	if rec := doRequest(s, http.MethodPost, "/api/transactions", []byte(payload)); rec.Code != http.StatusCreated {
		t.Fatalf("seed transaction: expected 201, got %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/api/cycles/chart.png", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected PNG bytes")
	}
}

func TestMutationsInvalidateCycleCache(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/cycles/current", nil)
	var before struct {
		Cycle calendar.BillingCycle `json:"cycle"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &before); err != nil {
		t.Fatalf("decode: %v", err)
	}

	payload := fmt.Sprintf(`{"date":%q,"title":"Salário","amount":"3000","type":"income"}`, todayISO())
	rec = doRequest(s, http.MethodPost, "/api/transactions", []byte(payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/cycles/current", nil)
	var after struct {
		Cycle calendar.BillingCycle `json:"cycle"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if after.Cycle.IncomeTotal.Cents != before.Cycle.IncomeTotal.Cents+300000 {
		t.Fatalf("stale cycle served after mutation: before %d, after %d",
			before.Cycle.IncomeTotal.Cents, after.Cycle.IncomeTotal.Cents)
	}
}
