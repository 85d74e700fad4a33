package httpapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
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

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/spreadsheet"
	"warungpos/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		// Fall back to a deterministic secret if crypto/rand fails (should not happen in practice).
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

// csrfTokenForHour computes an HMAC-SHA256 token for the given hour bucket
// (expressed as Unix time truncated to the hour). The token is hex-encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

// generateCSRFToken returns a token valid for the current hour bucket.
func (a *API) generateCSRFToken() string {
	now := time.Now().UTC()
	bucket := now.Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken checks whether the provided token matches the current or
// previous hour bucket, giving a 2-hour validity window.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	now := time.Now().UTC()
	currentBucket := now.Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	expected1 := a.csrfTokenForHour(currentBucket)
	expected2 := a.csrfTokenForHour(prevBucket)

	return hmac.Equal([]byte(token), []byte(expected1)) ||
		hmac.Equal([]byte(token), []byte(expected2))
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
	kept = append(kept, now)
	l.entries[key] = kept
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
	mux := http.NewServeMux()

	mux.HandleFunc("/api/healthz", a.handleHealth)
	mux.HandleFunc("/api/login", a.handleLogin)
	mux.HandleFunc("/api/csrf-token", a.handleCSRFToken)

	mux.HandleFunc("/api/raw-materials", a.requireAuth(a.handleRawMaterials))
	mux.HandleFunc("/api/raw-materials/import", a.requireAuth(a.handleRawMaterialImport))
	mux.HandleFunc("/api/raw-materials/export", a.requireAuth(a.handleRawMaterialExport))
	mux.HandleFunc("/api/raw-materials/", a.requireAuth(a.handleRawMaterialActions))

	mux.HandleFunc("/api/material-orders", a.requireAuth(a.handleMaterialOrders))
	mux.HandleFunc("/api/material-orders/", a.requireAuth(a.handleMaterialOrderActions))

	mux.HandleFunc("/api/products", a.requireAuth(a.handleProducts))
	mux.HandleFunc("/api/outlets", a.requireAuth(a.handleOutlets))
	mux.HandleFunc("/api/orders", a.requireAuth(a.handleOrders))
	mux.HandleFunc("/api/summary", a.requireAuth(a.handleSummary))
	mux.HandleFunc("/api/daily-cash", a.requireAuth(a.handleDailyCash))
	mux.HandleFunc("/api/restock-suggestions", a.requireAuth(a.handleRestockSuggestions))

	mux.HandleFunc("/api/users", a.requireAuth(a.handleUsers, domain.RoleOwner))
	mux.HandleFunc("/api/audit-logs", a.requireAuth(a.handleAuditLogs, domain.RoleOwner))

	return a.withMiddleware(mux)
}

// actorHandler receives the authenticated actor explicitly instead of digging
// it out of the request context. Every service call takes the same actor, so
// authorization decisions stay visible at the call site.
type actorHandler func(w http.ResponseWriter, r *http.Request, actor domain.Actor)

func (a *API) requireAuth(next actorHandler, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		next(w, r, actor)
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

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCSRFToken returns a stateless CSRF token valid for the current hour bucket.
// Clients must include this token in the X-CSRF-Token header for all mutating requests.
func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

// csrfExemptPaths lists paths that are exempt from CSRF validation.
// Login is excluded because it is called without a prior CSRF token fetch.
var csrfExemptPaths = []string{
	"/api/login",
}

// checkCSRF enforces CSRF token validation for state-changing methods.
// Returns false and writes an error response if validation fails.
func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

func (a *API) handleRawMaterials(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	switch r.Method {
	case http.MethodGet:
		includeDeleted := r.URL.Query().Get("include_deleted") == "true"
		materials, err := a.service.ListRawMaterials(r.Context(), actor, includeDeleted)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"raw_materials": materials})
	case http.MethodPost:
		var req domain.RawMaterialCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		material, err := a.service.CreateRawMaterial(r.Context(), actor, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"raw_material": material})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleRawMaterialActions(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	prefix := "/api/raw-materials/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("raw material id required"))
		return
	}

	if strings.HasSuffix(tail, "/adjust-stock") {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		id := strings.Trim(strings.TrimSuffix(tail, "/adjust-stock"), "/")
		if id == "" {
			writeError(w, http.StatusBadRequest, errors.New("raw material id required"))
			return
		}

		var req domain.StockAdjustRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		material, err := a.service.AdjustRawMaterialStock(r.Context(), actor, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"raw_material": material})
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req domain.RawMaterialUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		material, err := a.service.UpdateRawMaterial(r.Context(), actor, tail, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"raw_material": material})
	case http.MethodDelete:
		if err := a.service.DeleteRawMaterial(r.Context(), actor, tail); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleRawMaterialImport(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("form field 'file' is required"))
		return
	}
	defer file.Close()

	rows, rowErrors, err := spreadsheet.ParseRawMaterials(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.service.ImportRawMaterials(r.Context(), actor, rows)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Rows the parser rejected count as skipped alongside the rows the
	// service rejected.
	result.Skipped += len(rowErrors)
	result.Errors = append(rowErrors, result.Errors...)
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleRawMaterialExport(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	materials, err := a.service.ListRawMaterials(r.Context(), actor, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	workbook, err := spreadsheet.BuildRawMaterials(materials)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("raw-materials-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := workbook.Write(w); err != nil {
		log.Printf("write export workbook: %v", err)
	}
}

func (a *API) handleMaterialOrders(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		filter := store.MaterialOrderFilter{
			OutletID: strings.TrimSpace(query.Get("outlet_id")),
			Status:   strings.TrimSpace(query.Get("status")),
			Limit:    parsePositiveLimit(query.Get("limit"), 100, 500),
		}

		orders, err := a.service.ListMaterialOrders(r.Context(), actor, filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.MaterialOrderListResponse{MaterialOrders: orders})
	case http.MethodPost:
		var req domain.MaterialOrderCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		order, err := a.service.CreateMaterialOrder(r.Context(), actor, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, domain.MaterialOrderResponse{MaterialOrder: order})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleMaterialOrderActions(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	prefix := "/api/material-orders/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("material order id required"))
		return
	}

	target := ""
	suffix := ""
	switch {
	case strings.HasSuffix(tail, "/approve"):
		target, suffix = domain.MaterialOrderStatusApproved, "/approve"
	case strings.HasSuffix(tail, "/deliver"):
		target, suffix = domain.MaterialOrderStatusDelivered, "/deliver"
	}
	if target != "" {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		orderID := strings.Trim(strings.TrimSuffix(tail, suffix), "/")
		if orderID == "" {
			writeError(w, http.StatusBadRequest, errors.New("material order id required"))
			return
		}

		order, err := a.service.TransitionMaterialOrder(r.Context(), actor, orderID, target)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.MaterialOrderResponse{MaterialOrder: order})
		return
	}

	switch r.Method {
	case http.MethodGet:
		order, err := a.service.GetMaterialOrder(r.Context(), actor, tail)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.MaterialOrderResponse{MaterialOrder: order})
	case http.MethodPut:
		var req domain.MaterialOrderUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		order, err := a.service.UpdateMaterialOrder(r.Context(), actor, tail, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.MaterialOrderResponse{MaterialOrder: order})
	case http.MethodDelete:
		if err := a.service.CancelMaterialOrder(r.Context(), actor, tail); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.CreateProduct(r.Context(), actor, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleOutlets(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	switch r.Method {
	case http.MethodGet:
		outlets, err := a.service.ListOutlets(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"outlets": outlets})
	case http.MethodPost:
		var req domain.OutletCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		outlet, err := a.service.CreateOutlet(r.Context(), actor, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"outlet": outlet})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		filter := store.OrderFilter{
			OutletID: strings.TrimSpace(query.Get("outlet_id")),
			Limit:    parsePositiveLimit(query.Get("limit"), 100, 500),
		}
		if raw := strings.TrimSpace(query.Get("start_date")); raw != "" {
			day, err := parseDayQuery(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.New("start_date must be yyyy-mm-dd"))
				return
			}
			filter.From = day
		}
		if raw := strings.TrimSpace(query.Get("end_date")); raw != "" {
			day, err := parseDayQuery(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.New("end_date must be yyyy-mm-dd"))
				return
			}
			// end_date is inclusive; the filter upper bound is exclusive.
			filter.To = day.AddDate(0, 0, 1)
		}

		orders, err := a.service.ListOrders(r.Context(), actor, filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.OrderListResponse{Orders: orders})
	case http.MethodPost:
		var req domain.CheckoutRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := a.service.Checkout(r.Context(), actor, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	req := domain.SummaryRequest{
		StartDate: strings.TrimSpace(query.Get("start_date")),
		EndDate:   strings.TrimSpace(query.Get("end_date")),
		OutletID:  strings.TrimSpace(query.Get("outlet_id")),
	}

	summary, err := a.service.Summarize(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleDailyCash(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.DailyCashUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := a.service.UpsertDailyCash(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"daily_cash": entry})
}

func (a *API) handleRestockSuggestions(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	req := domain.RestockRequest{
		OutletID: strings.TrimSpace(query.Get("outlet_id")),
		Limit:    parsePositiveLimit(query.Get("limit"), 5, 50),
	}

	resp, err := a.service.RestockSuggestions(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"users": a.auth.ListUsers()})
	case http.MethodPost:
		var req domain.UserCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		user, err := a.auth.CreateUser(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": user})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request, actor domain.Actor) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	date := strings.TrimSpace(query.Get("date"))
	limit := parsePositiveLimit(query.Get("limit"), 100, 500)

	logs, err := a.service.ListAuditLogs(r.Context(), actor, date, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"audit_logs": logs})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Enforce CSRF protection for all state-changing requests.
		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
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

func parseDayQuery(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", raw, time.UTC)
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation problems are 400, authorization failures 403, missing records
// 404, and state or stock conflicts 409. Everything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err)
}

func statusForError(err error) int {
	var validationErr *store.ValidationError
	var authErr *store.AuthorizationError
	var stateErr *store.InvalidStateError
	var stockErr *store.InsufficientStockError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &stateErr), errors.As(err, &stockErr), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	// For 5xx responses, return a generic message to avoid leaking internal
	// implementation details (stack traces, SQL errors, file paths, etc.).
	// 4xx responses are user-facing so we return the original error message.
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
