// internal/app/system/workflow/workflow.go

// Package workflow holds the blood-request status state machine as an
// explicit (state, action) transition table, so the rule set is
// inspectable and testable independently of storage.
package workflow

import (
	"fmt"

	"github.com/lifeflowhq/lifeflow/internal/domain/models"
)

// Actions an NGO can apply to a blood request.
const (
	ActionAccept  = "accept"
	ActionReject  = "reject"
	ActionFulfill = "fulfill"
	ActionCancel  = "cancel"
)

// TransitionError reports an action that is not legal from the current
// status. Handlers map it to a 409 conflict.
type TransitionError struct {
	From   string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("action %q is not allowed from status %q", e.Action, e.From)
}

type key struct {
	from   string
	action string
}

// transitions is the complete set of legal movements. Anything absent
// from this table is rejected.
var transitions = map[key]string{
	{models.RequestStatusPending, ActionAccept}:   models.RequestStatusAccepted,
	{models.RequestStatusPending, ActionReject}:   models.RequestStatusRejected,
	{models.RequestStatusAccepted, ActionFulfill}: models.RequestStatusFulfilled,
	{models.RequestStatusAccepted, ActionCancel}:  models.RequestStatusCancelled,
}

// Transition returns the status a request moves to when the action is
// applied, or a *TransitionError when the pair is not in the table.
func Transition(current, action string) (string, error) {
	next, ok := transitions[key{current, action}]
	if !ok {
		return "", &TransitionError{From: current, Action: action}
	}
	return next, nil
}

// KnownAction reports whether the action name exists in the table at all,
// regardless of current status. Unknown actions are client errors (400);
// known-but-illegal ones are conflicts (409).
func KnownAction(action string) bool {
	switch action {
	case ActionAccept, ActionReject, ActionFulfill, ActionCancel:
		return true
	}
	return false
}
