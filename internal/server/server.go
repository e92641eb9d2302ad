// Package server exposes the back-office as JSON over HTTP for UIs that do not
// link the Go packages directly.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"broker-backoffice-go/internal/api"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "endpoint"})
)

// Broadcaster streams invalidation events over websocket
type Broadcaster interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	service        *api.BackOffice
	broadcaster    Broadcaster
	allowedOrigins []string
}

func NewHandler(service *api.BackOffice, broadcaster Broadcaster, allowedOrigins []string) *Handler {
	return &Handler{
		service:        service,
		broadcaster:    broadcaster,
		allowedOrigins: allowedOrigins,
	}
}

// Router builds the route table
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestContext, h.cors, instrument)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", h.HealthCheckHandler).Methods(http.MethodGet)
	if h.broadcaster != nil {
		r.HandleFunc("/ws/invalidations", h.broadcaster.ServeWS)
	}

	a := r.PathPrefix("/api").Subrouter()

	a.HandleFunc("/clients", h.ListClientsHandler).Methods(http.MethodGet)
	a.HandleFunc("/clients/{id}", h.ClientProfileHandler).Methods(http.MethodGet)
	a.HandleFunc("/clients/{id}/block", h.SetClientBlockedHandler).Methods(http.MethodPost)
	a.HandleFunc("/clients/{id}/messages", h.ListClientMessagesHandler).Methods(http.MethodGet)
	a.HandleFunc("/clients/{id}/messages", h.SendClientMessageHandler).Methods(http.MethodPost)
	a.HandleFunc("/trading-accounts/{id}/status", h.SetAccountStatusHandler).Methods(http.MethodPatch)
	a.HandleFunc("/trading-accounts/{id}/leverage", h.SetLeverageHandler).Methods(http.MethodPatch)

	a.HandleFunc("/kyc", h.ListKycHandler).Methods(http.MethodGet)
	a.HandleFunc("/kyc/{submission}/documents/{kind}", h.ReviewKycHandler).Methods(http.MethodPatch)

	a.HandleFunc("/transactions/history", h.TransactionHistoryHandler).Methods(http.MethodGet)
	a.HandleFunc("/transactions/withdrawals", h.WithdrawalQueueHandler).Methods(http.MethodGet)
	a.HandleFunc("/transactions/deposits", h.DepositQueueHandler).Methods(http.MethodGet)
	a.HandleFunc("/transactions/{origin}/{id}/approve", h.ApproveTransactionHandler).Methods(http.MethodPost)
	a.HandleFunc("/transactions/{origin}/{id}/reject", h.RejectTransactionHandler).Methods(http.MethodPost)

	a.HandleFunc("/wallet", h.WalletHandler).Methods(http.MethodGet)
	a.HandleFunc("/wallet/ledger", h.WalletLedgerHandler).Methods(http.MethodGet)
	a.HandleFunc("/wallet/replenish", h.ReplenishWalletHandler).Methods(http.MethodPost)
	a.HandleFunc("/wallet/withdraw", h.WithdrawWalletHandler).Methods(http.MethodPost)

	a.HandleFunc("/spread-profiles", h.ListSpreadProfilesHandler).Methods(http.MethodGet)
	a.HandleFunc("/spread-profiles", h.CreateSpreadProfileHandler).Methods(http.MethodPost)
	a.HandleFunc("/spread-profiles/{id}", h.GetSpreadProfileHandler).Methods(http.MethodGet)
	a.HandleFunc("/spread-profiles/{id}", h.UpdateSpreadProfileHandler).Methods(http.MethodPut)
	a.HandleFunc("/spread-profiles/{id}", h.DeleteSpreadProfileHandler).Methods(http.MethodDelete)
	a.HandleFunc("/account-types", h.ListAccountTypesHandler).Methods(http.MethodGet)
	a.HandleFunc("/account-types", h.CreateAccountTypeHandler).Methods(http.MethodPost)
	a.HandleFunc("/account-types/{id}", h.GetAccountTypeHandler).Methods(http.MethodGet)
	a.HandleFunc("/account-types/{id}", h.UpdateAccountTypeHandler).Methods(http.MethodPut)
	a.HandleFunc("/account-types/{id}", h.DeleteAccountTypeHandler).Methods(http.MethodDelete)

	a.HandleFunc("/notifications", h.ListNotificationsHandler).Methods(http.MethodGet)
	a.HandleFunc("/notifications", h.CreateNotificationHandler).Methods(http.MethodPost)
	a.HandleFunc("/notifications/{id}", h.DeleteNotificationHandler).Methods(http.MethodDelete)
	a.HandleFunc("/support/tickets", h.ListTicketsHandler).Methods(http.MethodGet)
	a.HandleFunc("/support/tickets/{id}", h.GetTicketHandler).Methods(http.MethodGet)
	a.HandleFunc("/support/tickets/{id}/reply", h.ReplyTicketHandler).Methods(http.MethodPost)
	a.HandleFunc("/support/tickets/{id}/status", h.SetTicketStatusHandler).Methods(http.MethodPatch)

	// Preflight; the cors middleware answers it
	a.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	return r
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.HealthCheck(ctx); err != nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestContext forwards the caller's request id and admin identity to the
// backend client.
func (h *Handler) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-Id")
		if requestId == "" {
			requestId = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestId)

		ctx := models.WithRequestContext(r.Context(), &models.RequestContext{
			RequestId: requestId,
			Actor:     r.Header.Get("X-Admin-Actor"),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (slices.Contains(h.allowedOrigins, "*") || slices.Contains(h.allowedOrigins, origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id, X-Admin-Actor")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Hijack is needed by the websocket upgrade on /ws/invalidations
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}

		timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, endpoint))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		timer.ObserveDuration()

		httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
	})
}

// respondWithServiceError maps service errors to HTTP statuses. Backend 4xx
// responses pass through with the backend's message; everything upstream of
// us failing is a 502.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, api.ErrInvalidArgument), errors.Is(err, api.ErrEmptyMessage):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, api.ErrInvalidAmount):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		respondWithError(w, apiErr.Status, apiErr.Message)
	case errors.As(err, &apiErr), errors.Is(err, client.ErrTransport):
		zap.L().Error("Backend request failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Backend unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		zap.L().Error("Unhandled service error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			zap.L().Warn("Failed to encode response", zap.Error(err))
		}
	}
}
