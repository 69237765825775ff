package mqtt

import "testing"

func TestTopics_EntityEvent(t *testing.T) {
	tests := []struct {
		entity, action, want string
	}{
		{"payment", "recorded", "loanledger/events/payment/recorded"},
		{"loan", "created", "loanledger/events/loan/created"},
		{"customer", "deleted", "loanledger/events/customer/deleted"},
	}

	var topics Topics
	for _, tt := range tests {
		if got := topics.EntityEvent(tt.entity, tt.action); got != tt.want {
			t.Errorf("EntityEvent(%q, %q) = %q, want %q", tt.entity, tt.action, got, tt.want)
		}
	}
}

func TestTopics_SystemStatus(t *testing.T) {
	var topics Topics
	if got := topics.SystemStatus(); got != "loanledger/system/status" {
		t.Errorf("SystemStatus() = %q, want loanledger/system/status", got)
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{}

	if err := c.Publish("topic", []byte("x"), 3, false); err == nil {
		t.Error("qos 3 should be rejected")
	}
	if err := c.Publish("", []byte("x"), 0, false); err == nil {
		t.Error("empty topic should be rejected")
	}
	if err := c.Publish("topic", make([]byte, maxPayloadSize+1), 0, false); err == nil {
		t.Error("oversized payload should be rejected")
	}
	if err := c.Publish("topic", []byte("x"), 0, false); err == nil {
		t.Error("publish without a connection should fail")
	}
}
