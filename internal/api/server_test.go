package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/loanledger/loanledger/internal/audit"
	"github.com/loanledger/loanledger/internal/auth"
	"github.com/loanledger/loanledger/internal/infrastructure/config"
	"github.com/loanledger/loanledger/internal/infrastructure/logging"
	"github.com/loanledger/loanledger/internal/ledger"
)

const testJWTSecret = "test-secret-key-at-least-32-characters-long"

// testServer creates a Server backed by a temporary SQLite database with
// the full schema applied.
func testServer(t *testing.T) *Server {
	t.Helper()

	db := setupTestDB(t)
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{
				Secret: testJWTSecret,
			},
		},
		Logger:       log,
		UserRepo:     auth.NewUserRepository(db),
		CustomerRepo: ledger.NewCustomerRepository(db),
		LoanRepo:     ledger.NewLoanRepository(db),
		PaymentRepo:  ledger.NewPaymentRepository(db),
		ReceiptRepo:  ledger.NewReceiptRepository(db),
		AuditRepo:    audit.NewSQLiteRepository(db),
		Version:      "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return srv
}

// setupTestDB creates a temporary SQLite database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "api-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE customers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			address TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE loans (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			principal_cents INTEGER NOT NULL,
			balance_cents INTEGER NOT NULL,
			interest_rate REAL NOT NULL DEFAULT 0,
			term_months INTEGER NOT NULL,
			start_date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE RESTRICT
		);

		CREATE TABLE payments (
			id TEXT PRIMARY KEY,
			loan_id TEXT NOT NULL,
			amount_cents INTEGER NOT NULL,
			method TEXT,
			notes TEXT,
			paid_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (loan_id) REFERENCES loans(id) ON DELETE RESTRICT
		);

		CREATE TABLE receipts (
			id TEXT PRIMARY KEY,
			payment_id TEXT NOT NULL UNIQUE,
			number TEXT NOT NULL UNIQUE,
			issued_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE RESTRICT
		);

		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			user_id TEXT,
			source TEXT NOT NULL DEFAULT 'api',
			details TEXT,
			created_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

// createTestUser inserts a user directly through the repository.
func createTestUser(t *testing.T, srv *Server, username, password string, role auth.Role) *auth.User {
	t.Helper()

	user := &auth.User{Username: username, Password: password, Role: role}
	if err := srv.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

// doJSON runs a request with an optional JSON body and session cookie.
func doJSON(t *testing.T, router http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// login authenticates and returns the session cookie from the response.
func login(t *testing.T, router http.Handler, username, password string) *http.Cookie {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/auth",
		`{"username":"`+username+`","password":"`+password+`"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body: %s", w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("login response carries no session cookie")
	return nil
}

// decodeBody unmarshals a JSON response body into a map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v; body: %s", err, w.Body.String())
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	resp := decodeBody(t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestHealth_ContentType(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
}

func TestRequestID_Generated(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("ACAC = %q, want true", got)
	}
}

func TestNotFound_JSONBody(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/api/nonexistent", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}

	resp := decodeBody(t, w)
	if resp["error"] == "" {
		t.Error("404 body should carry an error message")
	}
}

func TestMethodNotAllowed_JSONBody(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	// /api/auth only accepts POST.
	w := doJSON(t, router, http.MethodDelete, "/api/auth", "", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}

	resp := decodeBody(t, w)
	if resp["error"] != "Method not allowed" {
		t.Errorf("error = %v, want %q", resp["error"], "Method not allowed")
	}
}

func TestProtectedRoute_RequiresAuth(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/api/customers", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	resp := decodeBody(t, w)
	if resp["error"] != "No token provided" {
		t.Errorf("error = %v, want %q", resp["error"], "No token provided")
	}
}

func TestMetrics(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	createTestUser(t, srv, "admin", "password", auth.RoleAdmin)
	cookie := login(t, router, "admin", "password")

	w := doJSON(t, router, http.MethodGet, "/api/metrics", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var metrics SystemMetrics
	if err := json.Unmarshal(w.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("unmarshal metrics: %v", err)
	}
	if metrics.Version != "test" {
		t.Errorf("Version = %q, want test", metrics.Version)
	}
	if metrics.Ledger.Users != 1 {
		t.Errorf("Ledger.Users = %d, want 1", metrics.Ledger.Users)
	}
	if metrics.Runtime.Goroutines == 0 {
		t.Error("Runtime.Goroutines should be non-zero")
	}
}
