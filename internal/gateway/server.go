// Package gateway provides the local HTTP server for web front-ends.
// It exposes the chat session, project engine, wallet, and history over
// a JSON API plus a live SSE feed of project snapshots.
package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hypertask-network/hypertask/internal/chat"
	"github.com/hypertask-network/hypertask/internal/domain"
	"github.com/hypertask-network/hypertask/internal/health"
	"github.com/hypertask-network/hypertask/internal/history"
	"github.com/hypertask-network/hypertask/internal/logbuf"
	"github.com/hypertask-network/hypertask/internal/project"
	"github.com/hypertask-network/hypertask/internal/wallet"
)

// Server is the local HTTP gateway.
type Server struct {
	version        string
	session        *chat.Session
	engine         *project.Engine
	wallet         *wallet.Service
	history        *history.Service
	checker        *health.Checker
	logs           *logbuf.Buffer
	metricsEnabled bool
}

// NewServer wires the gateway to the client services.
func NewServer(version string, session *chat.Session, engine *project.Engine, w *wallet.Service, h *history.Service, checker *health.Checker, logs *logbuf.Buffer) *Server {
	return &Server{
		version: version,
		session: session,
		engine:  engine,
		wallet:  w,
		history: h,
		checker: checker,
		logs:    logs,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
		})

		r.Get("/chat", s.handleChatLog)
		r.Post("/chat", s.handleChatSend)
		r.Get("/agents", s.handleAgents)

		r.Get("/project", s.handleProject)
		r.Post("/project", s.handleProjectStart)
		r.Post("/project/approve", s.handleApprove)
		r.Post("/project/reject", s.handleReject)
		r.Post("/project/revision", s.handleRevision)

		r.Get("/wallet", s.handleWallet)
		r.Post("/wallet/deposit", s.handleDeposit)
		r.Post("/wallet/claim", s.handleClaim)

		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleHistoryClear)
		r.Delete("/history/{id}", s.handleHistoryDelete)

		r.Get("/logs", s.handleLogs)
		r.Get("/events", s.handleEvents)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Handlers ───────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := []health.Status{}
	if s.checker != nil {
		checks = s.checker.Statuses()
		if !s.checker.IsHealthy() {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"payment_released": s.engine.PaymentReleased(),
		"banner":           s.engine.Banner(),
	}
	if p, ok := s.engine.Current(); ok {
		resp["project_status"] = p.Status
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"messages":         s.session.Messages(),
		"conversation_id":  s.session.ConversationID(),
		"ready_to_execute": s.session.Ready(),
	})
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reply, err := s.session.Send(r.Context(), req.Message)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reply":            reply,
		"conversation_id":  s.session.ConversationID(),
		"ready_to_execute": s.session.Ready(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agents": s.engine.Roster(r.Context()),
	})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.engine.Current()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrNoActiveProject.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProjectStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	conversationID := ""
	if s.session.Ready() {
		conversationID = s.session.ConversationID()
	}
	p, err := s.engine.StartProject(r.Context(), req.Prompt, conversationID)
	switch err {
	case nil:
		writeJSON(w, http.StatusCreated, p)
	case domain.ErrEmptyPrompt:
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.ErrProjectActive:
		writeError(w, http.StatusConflict, err.Error())
	case domain.ErrInsufficientFunds:
		writeError(w, http.StatusPaymentRequired, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, s.engine.Approve)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, s.engine.Reject)
}

func (s *Server) handleRevision(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, s.engine.RequestRevision)
}

func (s *Server) reviewAction(w http.ResponseWriter, fn func() error) {
	switch err := fn(); err {
	case nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"wallet": s.wallet.Balance(),
			"banner": s.engine.Banner(),
		})
	case domain.ErrNoActiveProject:
		writeError(w, http.StatusNotFound, err.Error())
	case domain.ErrNotInReview:
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	txs, err := s.wallet.Transactions(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	bal := s.wallet.Balance()
	writeJSON(w, http.StatusOK, map[string]any{
		"total":        bal.Total,
		"locked":       bal.Locked,
		"available":    bal.Available(),
		"transactions": txs,
	})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount json.Number `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := wallet.ParseAmount(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bal, err := s.wallet.Deposit(amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	bal, err := s.wallet.Claim()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.history.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []domain.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	switch err := s.history.Delete(chi.URLParam(r, "id")); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case domain.ErrHistoryNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": s.logs.Tail(100),
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local front-end development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
