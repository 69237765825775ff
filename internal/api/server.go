package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/loanledger/loanledger/internal/audit"
	"github.com/loanledger/loanledger/internal/auth"
	"github.com/loanledger/loanledger/internal/infrastructure/config"
	"github.com/loanledger/loanledger/internal/infrastructure/database"
	"github.com/loanledger/loanledger/internal/infrastructure/logging"
	"github.com/loanledger/loanledger/internal/infrastructure/mqtt"
	"github.com/loanledger/loanledger/internal/ledger"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	Security     config.SecurityConfig
	Logger       *logging.Logger
	DB           *database.DB
	UserRepo     auth.UserRepository
	CustomerRepo ledger.CustomerRepository
	LoanRepo     ledger.LoanRepository
	PaymentRepo  ledger.PaymentRepository
	ReceiptRepo  ledger.ReceiptRepository
	AuditRepo    audit.Repository
	Events       *mqtt.Client // optional: nil disables event publishing
	Production   bool         // controls the Secure flag on session cookies
	Version      string
}

// Server is the HTTP API server for the loan ledger.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	secCfg       config.SecurityConfig
	logger       *logging.Logger
	db           *database.DB
	userRepo     auth.UserRepository
	customerRepo ledger.CustomerRepository
	loanRepo     ledger.LoanRepository
	paymentRepo  ledger.PaymentRepository
	receiptRepo  ledger.ReceiptRepository
	auditRepo    audit.Repository
	events       *mqtt.Client
	production   bool
	version      string
	server       *http.Server
	startTime    time.Time
	auditCh      chan *audit.Entry
	cancel       context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.CustomerRepo == nil || deps.LoanRepo == nil || deps.PaymentRepo == nil || deps.ReceiptRepo == nil {
		return nil, fmt.Errorf("ledger repositories are required")
	}
	// Events is optional — a broker outage never blocks the API.

	s := &Server{
		cfg:          deps.Config,
		secCfg:       deps.Security,
		logger:       deps.Logger,
		db:           deps.DB,
		userRepo:     deps.UserRepo,
		customerRepo: deps.CustomerRepo,
		loanRepo:     deps.LoanRepo,
		paymentRepo:  deps.PaymentRepo,
		receiptRepo:  deps.ReceiptRepo,
		auditRepo:    deps.AuditRepo,
		events:       deps.Events,
		production:   deps.Production,
		version:      deps.Version,
	}

	if s.auditRepo != nil {
		s.auditCh = make(chan *audit.Entry, auditChanSize)
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the async audit log writer, and launches
// the HTTP listener in a background goroutine. The server can be stopped
// with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.startTime = time.Now()

	if s.auditCh != nil {
		go s.drainAuditLog(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (audit writer drains before exit)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
