package api

import "encoding/json"

// publishEvent announces a ledger mutation on the event broker.
//
// Fire-and-forget: publishing failures degrade to a warning log and
// never affect the HTTP response. No-op when events are disabled.
func (s *Server) publishEvent(entity, action string, payload any) {
	if s.events == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("event payload marshal failed", "entity", entity, "action", action, "error", err)
		return
	}

	if err := s.events.PublishEvent(entity, action, body); err != nil {
		s.logger.Warn("event publish failed", "entity", entity, "action", action, "error", err)
	}
}
