package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"banortesmart/backend/internal/assistant"
	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/payment"
	"banortesmart/backend/internal/session"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{session.ErrMissingCredentials, http.StatusBadRequest},
		{assistant.ErrEmptyQuestion, http.StatusBadRequest},
		{payment.ErrBelowMinimum, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", payment.ErrUnknownMode, "x"), http.StatusBadRequest},
		{fmt.Errorf("%w: %q", consumption.ErrUnknownUtility, "gas"), http.StatusBadRequest},
		{session.ErrSessionRevoked, http.StatusUnauthorized},
		{session.ErrConsentRequired, http.StatusForbidden},
		{fmt.Errorf("%w: water", session.ErrUtilityNotLinked), http.StatusForbidden},
		{fmt.Errorf("water week 9: %w", consumption.ErrWeekNotFound), http.StatusNotFound},
		{assistant.ErrTurnInProgress, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Fatalf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
