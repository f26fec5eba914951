package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Sirbiscuits1/Marketplace/internal/gateway"
	"github.com/Sirbiscuits1/Marketplace/internal/market"
	"github.com/Sirbiscuits1/Marketplace/internal/notify"
	"github.com/Sirbiscuits1/Marketplace/internal/wallet"
	"github.com/Sirbiscuits1/Marketplace/pkg/fees"
)

// Server adapts UI intents to coordinator operations. Mutating intents are
// single-flight per operation key: the coordinator must never see the same
// create/cancel/purchase double-submitted while one is in flight.
type Server struct {
	coord *market.Coordinator
	queue *notify.Queue
	reg   market.Registry

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewServer creates the intent API server.
func NewServer(coord *market.Coordinator, queue *notify.Queue, reg market.Registry) *Server {
	return &Server{
		coord:    coord,
		queue:    queue,
		reg:      reg,
		inFlight: make(map[string]bool),
	}
}

// begin marks an operation key in flight; false means a duplicate intent.
func (s *Server) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

func (s *Server) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.coord.Session()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"wallet": map[string]any{
			"state":     sess.State().String(),
			"addresses": sess.Addresses(),
			"balance":   sess.Balance(),
		},
		"cache": s.coord.Cache().Stats(),
	})
}

func (s *Server) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"outcomes": s.queue.Recent(50),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type healthRegistry interface {
		Health(ctx context.Context) (*gateway.Health, error)
	}
	resp := map[string]any{
		"success": true,
		"cache":   s.coord.Cache().Stats(),
	}
	if hr, ok := s.reg.(healthRegistry); ok {
		if h, err := hr.Health(r.Context()); err == nil {
			resp["registry"] = h
		} else {
			resp["registry_error"] = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if !s.begin("connect") {
		writeError(w, http.StatusConflict, "connect already in flight")
		return
	}
	defer s.end("connect")

	if err := s.coord.Session().Connect(r.Context()); err != nil {
		if errors.Is(err, wallet.ErrAgentNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":      false,
				"error":        "agent_not_found",
				"message":      "No wallet extension detected",
				"fallback_url": "https://yours.org",
			})
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	sess := s.coord.Session()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"state":     sess.State().String(),
		"addresses": sess.Addresses(),
		"balance":   sess.Balance(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if len(address) < 20 || len(address) > 64 {
		writeError(w, http.StatusBadRequest, "address format is invalid")
		return
	}

	view, err := s.coord.SearchAddress(r.Context(), address)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": view})
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		if err := s.coord.ReconcileListings(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"listings": s.coord.Cache().Listings(),
	})
}

type createRequest struct {
	Origin     string    `json:"origin"`
	Price      fees.Sats `json:"price_satoshis"`
	TipPercent float64   `json:"tip_percent"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := "list:" + req.Origin
	if !s.begin(key) {
		writeError(w, http.StatusConflict, "listing already in flight for this origin")
		return
	}
	defer s.end(key)

	listing, err := s.coord.List(r.Context(), market.ListRequest{
		Origin:     req.Origin,
		Price:      req.Price,
		TipPercent: req.TipPercent,
	})
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "listing": listing})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	key := "cancel:" + id
	if !s.begin(key) {
		writeError(w, http.StatusConflict, "cancel already in flight")
		return
	}
	defer s.end(key)

	if err := s.coord.Cancel(r.Context(), id); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	key := "purchase:" + id
	if !s.begin(key) {
		writeError(w, http.StatusConflict, "purchase already in flight")
		return
	}
	defer s.end(key)

	res, err := s.coord.Purchase(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	if res.Unsupported {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "not_supported",
			"message": "Purchasing is not yet supported by this wallet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "txid": res.Txid})
}

func writeOpError(w http.ResponseWriter, err error) {
	var opErr *market.OpError
	if errors.As(err, &opErr) {
		status := http.StatusBadGateway
		if opErr.Kind == market.FailureValidation {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]any{
			"success": false,
			"error":   opErr.Kind.String(),
			"message": opErr.Err.Error(),
		})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
