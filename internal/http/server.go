// Package http exposes the ledger as a JSON API.
package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"equi/internal/middleware"
	"equi/internal/service"
)

// Server routes HTTP requests to the ledger services.
type Server struct {
	subscriptions *service.SubscriptionService
	splits        *service.SplitService
}

// NewServer creates a Server over the given services.
func NewServer(subscriptions *service.SubscriptionService, splits *service.SplitService) *Server {
	return &Server{subscriptions: subscriptions, splits: splits}
}

// Handler builds the full routing table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/subs", s.handleListSubscriptions)
	mux.HandleFunc("POST /api/subs", s.handleCreateSubscription)
	mux.HandleFunc("GET /api/subs/{id}", s.handleGetSubscription)
	mux.HandleFunc("DELETE /api/subs/{id}", s.handleDeleteSubscription)
	mux.HandleFunc("PUT /api/subs/{id}/pay", s.handleMarkMonthPaid)

	mux.HandleFunc("GET /api/splits", s.handleListSplits)
	mux.HandleFunc("POST /api/splits", s.handleCreateSplit)
	mux.HandleFunc("GET /api/splits/{id}", s.handleGetSplit)
	mux.HandleFunc("PUT /api/splits/{id}", s.handleUpdateSplit)
	mux.HandleFunc("DELETE /api/splits/{id}", s.handleDeleteSplit)
	mux.HandleFunc("PUT /api/splits/{id}/pay/{index}", s.handleTogglePaid)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/balances", s.handleBalances)
	mux.HandleFunc("POST /api/calculate", s.handleCalculate)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Logging(middleware.Metrics(middleware.CORS(mux)))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
