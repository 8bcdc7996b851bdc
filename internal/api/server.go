package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/veridlabs/id-node/internal/config"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/internal/health"
	"github.com/veridlabs/id-node/internal/log"
)

// Server exposes the node API over http
type Server struct {
	cfg             *config.Configuration
	identityService ports.IdentityService
	credentials     ports.CredentialService
	verification    ports.VerificationService
	ledger          ports.Ledger
	health          *health.Status
}

// NewServer wires the services into an http handler set
func NewServer(cfg *config.Configuration, identityService ports.IdentityService, credentials ports.CredentialService, verification ports.VerificationService, ledger ports.Ledger, healthStatus *health.Status) *Server {
	return &Server{
		cfg:             cfg,
		identityService: identityService,
		credentials:     credentials,
		verification:    verification,
		ledger:          ledger,
		health:          healthStatus,
	}
}

// Routes mounts all the API routes on the given router
func (s *Server) Routes(ctx context.Context, mux *chi.Mux) {
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(log.ChiMiddleware(ctx))

	mux.Get("/status", s.Status)

	mux.Route("/v1", func(r chi.Router) {
		r.Route("/identities", func(r chi.Router) {
			r.With(s.basicAuth()).Post("/", s.CreateIdentity)
			r.Get("/{did}", s.GetIdentity)
		})
		r.Route("/credentials", func(r chi.Router) {
			r.With(s.basicAuth()).Post("/issue", s.IssueCredential)
			r.With(s.basicAuth()).Post("/revoke", s.RevokeCredential)
			r.Post("/verify", s.VerifyCredential)
			r.Get("/{id}/quick-verify", s.QuickVerify)
			r.Get("/subject/{subjectDID}", s.ListBySubject)
		})
	})
}

// StatusResponse is the health endpoint payload
type StatusResponse struct {
	Status    string          `json:"status"`
	Ledger    LedgerStatus    `json:"ledger"`
	Checks    map[string]bool `json:"checks,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// LedgerStatus reports ledger connectivity
type LedgerStatus struct {
	Connected   bool   `json:"connected"`
	LatestBlock uint64 `json:"latestBlock"`
}

// Status handles GET /status
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := StatusResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}

	block, err := s.ledger.LatestBlock(ctx)
	if err != nil {
		log.Error(ctx, "ledger unreachable", "err", err)
		resp.Status = "unhealthy"
	} else {
		resp.Ledger = LedgerStatus{Connected: true, LatestBlock: block}
	}

	if s.health != nil {
		resp.Checks = s.health.Status(ctx)
		for _, up := range resp.Checks {
			if !up {
				resp.Status = "unhealthy"
			}
		}
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, resp)
}
