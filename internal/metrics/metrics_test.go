package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opencompliance/kestrel/internal/domain"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics handler returned %d", rr.Code)
	}
	return rr.Body.String()
}

func TestObserveEvaluation(t *testing.T) {
	m := New()

	m.ObserveEvaluation(domain.DomainTransaction, string(domain.StatusCompliant), 0.1)
	m.ObserveEvaluation(domain.DomainTransaction, string(domain.StatusHighRisk), 0.65)
	m.ObserveEvaluation(domain.DomainKYC, string(domain.KYCVerified), 0.2)

	body := scrape(t, m)

	if !strings.Contains(body, `kestrel_evaluations_total{domain="transaction",status="COMPLIANT"} 1`) {
		t.Error("missing transaction COMPLIANT counter")
	}
	if !strings.Contains(body, `kestrel_evaluations_total{domain="kyc",status="VERIFIED"} 1`) {
		t.Error("missing kyc VERIFIED counter")
	}
	if !strings.Contains(body, `kestrel_evaluation_score_count{domain="transaction"} 2`) {
		t.Error("missing transaction score histogram count")
	}
}

func TestObserveAlert(t *testing.T) {
	m := New()

	m.ObserveAlert(domain.DomainTransaction)
	m.ObserveAlert(domain.DomainTransaction)

	body := scrape(t, m)
	if !strings.Contains(body, `kestrel_alerts_total{domain="transaction"} 2`) {
		t.Error("missing alerts counter")
	}
}

func TestHTTPMiddleware(t *testing.T) {
	m := New()

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/evaluate/transaction", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 passthrough, got %d", rr.Code)
	}

	body := scrape(t, m)
	if !strings.Contains(body, `kestrel_http_requests_total{method="POST",route="/evaluate/transaction",status="201"} 1`) {
		t.Error("missing http request counter")
	}
}
