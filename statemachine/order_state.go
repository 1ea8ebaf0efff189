// Package statemachine describes the usual progression of an order through
// the kitchen. It is advisory: the order service accepts any known status on
// update, and clients use Next to decide which action to offer.
package statemachine

import (
	"restaurant-pos-api/models"
)

// Step is one edge of the usual progression and the role group expected to take it
type Step struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"`
}

var progression = []Step{
	{From: models.StatusPending, To: models.StatusPreparing, Actor: "kitchen"},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: "kitchen"},
	{From: models.StatusReady, To: models.StatusServed, Actor: "waiter"},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: "staff"},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: "staff"},
	{From: models.StatusReady, To: models.StatusCancelled, Actor: "staff"},
}

// Terminal states have no outgoing step
var terminal = map[models.OrderStatus]bool{
	models.StatusServed:    true,
	models.StatusCancelled: true,
}

func IsTerminal(status models.OrderStatus) bool {
	return terminal[status]
}

// Next returns the forward (non-cancel) step from status, if any
func Next(status models.OrderStatus) (models.OrderStatus, bool) {
	for _, s := range progression {
		if s.From == status && s.To != models.StatusCancelled {
			return s.To, true
		}
	}
	return "", false
}

// Follows returns all usual next states from status
func Follows(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, s := range progression {
		if s.From == status {
			nexts = append(nexts, s.To)
		}
	}
	return nexts
}

// IsUsual reports whether from → to is part of the usual progression. A
// false result is informational only.
func IsUsual(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range progression {
		if s.From == from && s.To == to {
			return true
		}
	}
	return false
}

// Steps returns the full progression for documentation
func Steps() []Step {
	out := make([]Step, len(progression))
	copy(out, progression)
	return out
}

// TerminalStates lists statuses with no outgoing step
func TerminalStates() []models.OrderStatus {
	var out []models.OrderStatus
	for _, st := range models.AllOrderStatuses {
		if IsTerminal(st) {
			out = append(out, st)
		}
	}
	return out
}

// Transitions maps every status to its usual next states
func Transitions() map[models.OrderStatus][]models.OrderStatus {
	out := make(map[models.OrderStatus][]models.OrderStatus, len(models.AllOrderStatuses))
	for _, st := range models.AllOrderStatuses {
		out[st] = Follows(st)
		if out[st] == nil {
			out[st] = []models.OrderStatus{}
		}
	}
	return out
}
