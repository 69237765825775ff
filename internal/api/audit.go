package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/loanledger/loanledger/internal/audit"
)

// auditChanSize bounds the queue of pending audit writes. A full queue
// drops entries rather than stalling request handlers.
const auditChanSize = 256

// auditLog enqueues an audit entry for the background writer.
func (s *Server) auditLog(action, entityType, entityID, userID string, details map[string]any) {
	if s.auditCh == nil {
		return
	}

	entry := &audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Source:     "api",
		Details:    details,
	}

	select {
	case s.auditCh <- entry:
	default:
		s.logger.Warn("audit queue full, entry dropped",
			"action", action,
			"entity_type", entityType,
		)
	}
}

// drainAuditLog is the single background writer for the audit trail.
// One goroutine keeps writes serial, which suits SQLite's single-writer
// model. On shutdown it flushes whatever is still queued.
func (s *Server) drainAuditLog(ctx context.Context) {
	for {
		select {
		case entry := <-s.auditCh:
			s.writeAuditEntry(entry)
		case <-ctx.Done():
			s.flushAuditQueue()
			return
		}
	}
}

// flushAuditQueue writes all queued entries without blocking for more.
func (s *Server) flushAuditQueue() {
	for {
		select {
		case entry := <-s.auditCh:
			s.writeAuditEntry(entry)
		default:
			return
		}
	}
}

func (s *Server) writeAuditEntry(entry *audit.Entry) {
	// Deliberately not tied to a request context: the request that
	// produced this entry has usually completed already.
	if err := s.auditRepo.Create(context.Background(), entry); err != nil {
		s.logger.Error("audit write failed",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"error", err,
		)
	}
}

// handleListAuditLogs returns a page of the audit trail.
//
// Query parameters: action, entity_type, entity_id, limit, offset.
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeInternalError(w, "Audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = n
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "Failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
