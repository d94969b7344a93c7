// Package service defines the backend-agnostic boundary for identity and
// document-store operations. Store documents are decoded into these typed
// records at the boundary; nothing above this package sees raw field maps.
package service

import (
	"fmt"
	"time"
)

// User is an account known to the identity gateway. EmailVerified is only
// meaningful for users resolved through the identity gateway; users resolved
// from the store's users collection carry it as false.
type User struct {
	ID            string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// ListKind distinguishes the always-present personal list from shared lists.
type ListKind string

const (
	ListPersonal ListKind = "personal"
	ListShared   ListKind = "shared"
)

// List is a task list. Ownership never transfers.
type List struct {
	ID        string
	Name      string
	OwnerID   string
	Kind      ListKind
	CreatedAt time.Time
}

// PersonalListID returns the deterministic document ID of a user's personal
// list. Every user has exactly one, created at registration.
func PersonalListID(userID string) string {
	return "personal-" + userID
}

// Grant gives a non-owner user view/edit access to a shared list.
// At most one grant exists per (list, user) pair.
type Grant struct {
	ID        string
	ListID    string
	UserID    string
	GrantedAt time.Time
}

// Priority is the fixed task priority scale.
type Priority string

const (
	PriorityHigh Priority = "High"
	PriorityMid  Priority = "Mid"
	PriorityLow  Priority = "Low"
)

// ParsePriority validates a priority value. Anything outside the enumerated
// set is a data-integrity error and is rejected up front.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityHigh, PriorityMid, PriorityLow:
		return Priority(s), nil
	}
	return "", fmt.Errorf("%w: priority must be High, Mid or Low, got %q", ErrValidation, s)
}

// Rank returns the sort rank of a priority: High=0, Mid=1, Low=2.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMid:
		return 1
	default:
		return 2
	}
}

// DueDateTimeLayout is the wire format of Task.DueDateTime.
const DueDateTimeLayout = "2006-01-02 15:04"

// Task belongs to exactly one list at all times.
type Task struct {
	ID          string
	Title       string
	DueDateTime string
	Priority    Priority
	Completed   bool
	CreatedAt   time.Time
	ListID      string
}

// DueTime parses the task's due date-time. ok is false for malformed values,
// which sort after every well-formed one.
func (t Task) DueTime() (due time.Time, ok bool) {
	due, err := time.Parse(DueDateTimeLayout, t.DueDateTime)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}
