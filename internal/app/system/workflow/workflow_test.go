package workflow

import (
	"errors"
	"testing"

	"github.com/lifeflowhq/lifeflow/internal/domain/models"
)

func TestTransition_LegalMoves(t *testing.T) {
	tests := []struct {
		from   string
		action string
		want   string
	}{
		{models.RequestStatusPending, ActionAccept, models.RequestStatusAccepted},
		{models.RequestStatusPending, ActionReject, models.RequestStatusRejected},
		{models.RequestStatusAccepted, ActionFulfill, models.RequestStatusFulfilled},
		{models.RequestStatusAccepted, ActionCancel, models.RequestStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.from+"/"+tt.action, func(t *testing.T) {
			got, err := Transition(tt.from, tt.action)
			if err != nil {
				t.Fatalf("Transition(%q, %q) returned error: %v", tt.from, tt.action, err)
			}
			if got != tt.want {
				t.Errorf("Transition(%q, %q) = %q, want %q", tt.from, tt.action, got, tt.want)
			}
		})
	}
}

func TestTransition_RejectsEverythingElse(t *testing.T) {
	statuses := []string{
		models.RequestStatusPending,
		models.RequestStatusAccepted,
		models.RequestStatusRejected,
		models.RequestStatusFulfilled,
		models.RequestStatusCancelled,
	}
	actions := []string{ActionAccept, ActionReject, ActionFulfill, ActionCancel}

	legal := map[string]bool{
		models.RequestStatusPending + "/" + ActionAccept:   true,
		models.RequestStatusPending + "/" + ActionReject:   true,
		models.RequestStatusAccepted + "/" + ActionFulfill: true,
		models.RequestStatusAccepted + "/" + ActionCancel:  true,
	}

	for _, from := range statuses {
		for _, action := range actions {
			if legal[from+"/"+action] {
				continue
			}
			_, err := Transition(from, action)
			if err == nil {
				t.Errorf("Transition(%q, %q) allowed, want TransitionError", from, action)
				continue
			}
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Errorf("Transition(%q, %q) error = %T, want *TransitionError", from, action, err)
			}
		}
	}
}

func TestTransition_UnknownAction(t *testing.T) {
	if _, err := Transition(models.RequestStatusPending, "approve"); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestKnownAction(t *testing.T) {
	for _, a := range []string{ActionAccept, ActionReject, ActionFulfill, ActionCancel} {
		if !KnownAction(a) {
			t.Errorf("KnownAction(%q) = false, want true", a)
		}
	}
	for _, a := range []string{"", "approve", "ACCEPT", "delete"} {
		if KnownAction(a) {
			t.Errorf("KnownAction(%q) = true, want false", a)
		}
	}
}

func TestTransitionError_Message(t *testing.T) {
	_, err := Transition(models.RequestStatusFulfilled, ActionAccept)
	if err == nil {
		t.Fatal("expected error")
	}
	want := `action "accept" is not allowed from status "FULFILLED"`
	if err.Error() != want {
		t.Errorf("error message = %q, want %q", err.Error(), want)
	}
}
