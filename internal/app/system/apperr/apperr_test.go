package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := Validation("offerings must be non-negative")
	if KindOf(err) != KindValidation {
		t.Errorf("KindOf = %v, want KindValidation", KindOf(err))
	}

	wrapped := fmt.Errorf("submit: %w", err)
	if KindOf(wrapped) != KindValidation {
		t.Errorf("KindOf through wrap = %v, want KindValidation", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != 0 {
		t.Error("plain error should carry no kind")
	}
}

func TestAuthorizationMessageIsGeneric(t *testing.T) {
	err := Authorization("actor area does not dominate report centre")
	if Message(err) != "not permitted" {
		t.Errorf("Message = %q, want generic denial", Message(err))
	}
	// The detail stays reachable for logging.
	if err.Error() == "not permitted" {
		t.Error("expected wrapped detail in Error() for logs")
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad week"), http.StatusBadRequest},
		{Authorization("wrong role"), http.StatusForbidden},
		{NotFound("report"), http.StatusNotFound},
		{Conflict("report already exists for week"), http.StatusConflict},
		{StateConflict("report is no longer pending"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestMessageUnclassified(t *testing.T) {
	if Message(errors.New("mongo: connection reset")) != "internal error" {
		t.Error("unclassified errors must not leak their message")
	}
}
