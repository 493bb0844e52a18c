package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fuelsales/internal/domain"
	"fuelsales/internal/store"
)

type API struct {
	repo          store.Repository
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	metrics       *metrics
}

type Options struct {
	AllowedOrigin  string
	MetricsEnabled bool
}

func New(repo store.Repository, auth *AuthManager, opts Options) *API {
	api := &API{
		repo:          repo,
		auth:          auth,
		allowedOrigin: opts.AllowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
	if api.allowedOrigin == "" {
		api.allowedOrigin = "*"
	}
	if opts.MetricsEnabled {
		api.metrics = newMetrics()
	}
	return api
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.withMiddleware)
	if a.metrics != nil {
		r.Use(a.metrics.observe)
		r.Method(http.MethodGet, "/metrics", a.metrics.handler())
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w)
	})

	r.Get("/healthz", a.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth(RoleAttendant, RoleAdmin))
			r.Get("/fuel-sales/branch/{branchId}", a.handleListSales)
			r.Get("/inventory/branch/{branchId}", a.handleListInventory)
			r.Post("/fuel-sales", a.handleCreateSale)
			r.Put("/fuel-sales/{id}", a.handleUpdateSale)
			r.Delete("/fuel-sales/{id}", a.handleDeleteSale)
		})
	})

	return r
}

type actorKey struct{}

func withActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(domain.Actor)
	return actor
}

func (a *API) requireAuth(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			token := strings.TrimSpace(authorization[len("Bearer "):])
			actor, err := a.auth.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err)
				return
			}

			if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
				writeError(w, http.StatusForbidden, errors.New("forbidden role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInactiveAccount):
		writeError(w, http.StatusUnauthorized, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")
	if !a.checkBranch(w, r, branchID) {
		return
	}

	sales, err := a.repo.ListSales(r.Context(), branchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (a *API) handleListInventory(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchId")
	if !a.checkBranch(w, r, branchID) {
		return
	}

	items, err := a.repo.ListInventory(r.Context(), branchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var sale domain.SaleRecord
	if err := decodeJSON(r, &sale); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if sale.BranchID == "" {
		sale.BranchID = actorFrom(r.Context()).BranchID
	}
	if !a.checkBranch(w, r, sale.BranchID) {
		return
	}

	sale.ID = 0
	created, err := a.repo.CreateSale(r.Context(), sale)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.metrics.saleWritten("create", created.BranchID)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := saleID(w, r)
	if !ok {
		return
	}

	var sale domain.SaleRecord
	if err := decodeJSON(r, &sale); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	existing, err := a.repo.GetSale(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sale.BranchID == "" {
		sale.BranchID = existing.BranchID
	}
	if !a.checkBranch(w, r, existing.BranchID) || !a.checkBranch(w, r, sale.BranchID) {
		return
	}

	sale.ID = id
	updated, err := a.repo.UpdateSale(r.Context(), sale)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.metrics.saleWritten("update", updated.BranchID)
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := saleID(w, r)
	if !ok {
		return
	}

	existing, err := a.repo.GetSale(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !a.checkBranch(w, r, existing.BranchID) {
		return
	}

	if err := a.repo.DeleteSale(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	a.metrics.saleWritten("delete", existing.BranchID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) checkBranch(w http.ResponseWriter, r *http.Request, branchID string) bool {
	if strings.TrimSpace(branchID) == "" {
		writeError(w, http.StatusBadRequest, errors.New("branch_id is required"))
		return false
	}
	if !CanAccessBranch(actorFrom(r.Context()), branchID) {
		writeError(w, http.StatusForbidden, fmt.Errorf("no access to branch %s", branchID))
		return false
	}
	return true
}

func saleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("invalid sale id"))
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidSale):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, errors.New("sale not found"))
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		requestID := middleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s id=%s", r.Method, r.URL.Path, time.Since(startedAt), requestID)
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx bodies stay generic; 4xx messages are shown to staff as is.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
