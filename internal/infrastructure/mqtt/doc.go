// Package mqtt provides the optional event publisher.
//
// When events are enabled in config, every ledger mutation is announced
// on a loanledger/events/{entity}/{action} topic so downstream consumers
// (reporting, notifications) can react without polling the API. The
// publisher is fire-and-forget from the API's perspective: a broker
// outage degrades to a log line, never a failed request.
package mqtt
