package mqtt

import "fmt"

// Topic prefixes for loan ledger event publishing.
//
// All event topics use the scheme: loanledger/events/{entity}/{action}
// Subscribers (reporting jobs, notification services) filter by wildcard,
// e.g. loanledger/events/loan/# for everything that happens to loans.
const (
	// TopicPrefixEvents is the base for all entity event topics.
	TopicPrefixEvents = "loanledger/events"

	// TopicPrefixSystem is the base for system status topics.
	TopicPrefixSystem = "loanledger/system"
)

// Topics provides builders for loan ledger MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// EntityEvent returns the topic for a mutation on a ledger entity.
//
// Example: loanledger/events/payment/recorded
func (Topics) EntityEvent(entity, action string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixEvents, entity, action)
}

// SystemStatus returns the topic for service online/offline status.
//
// Example: loanledger/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
