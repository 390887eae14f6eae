package models

import (
	"fmt"
	"regexp"
	"strings"
)

// TicketID is a normalized work-item identifier of the form PREFIX-NUMBER
// (e.g., "ADW-1495"). The prefix is always upper-case.
type TicketID string

// PlaceholderTicket is the sentinel meaning "no ticket resolved". It is a
// reserved value, distinguishable from every real TicketID, and downstream
// rendering treats it specially (no tracker link is generated for it).
const PlaceholderTicket TicketID = "ADW-XXXX"

var ticketIDPattern = regexp.MustCompile(`^([A-Za-z]+)-([1-9][0-9]*)$`)

// ParseTicketID validates and normalizes a raw ticket identifier.
// The prefix must be alphabetic and the number a positive integer.
func ParseTicketID(raw string) (TicketID, error) {
	raw = strings.TrimSpace(raw)
	if !ticketIDPattern.MatchString(raw) {
		return "", fmt.Errorf("invalid ticket id %q: expected PREFIX-NUMBER", raw)
	}
	return TicketID(strings.ToUpper(raw)), nil
}

// IsPlaceholder reports whether t is the "no ticket" sentinel
func (t TicketID) IsPlaceholder() bool {
	return t == PlaceholderTicket
}

// String returns the ticket id as a plain string
func (t TicketID) String() string {
	return string(t)
}

// TicketCandidate is an autocomplete suggestion from the work-item search.
// It is never authoritative until the operator selects it.
type TicketCandidate struct {
	// ID is the ticket identifier
	ID TicketID
	// Summary is the human-readable work-item title
	Summary string
	// Kind is the work-item type (e.g., "User Story", "Bug")
	Kind string
}
