package auth

import (
	"errors"
	"testing"

	"github.com/jmylchreest/covergen/internal/apperr"
)

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		provided   string
		configured string
		wantErr    bool
	}{
		{name: "match", provided: "s3cret", configured: "s3cret"},
		{name: "missing", provided: "", configured: "s3cret", wantErr: true},
		{name: "wrong", provided: "guess", configured: "s3cret", wantErr: true},
		{name: "prefix", provided: "s3cre", configured: "s3cret", wantErr: true},
		{name: "nothing configured", provided: "", configured: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authenticate(tt.provided, tt.configured)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrUnauthorized) {
				t.Errorf("Authenticate() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestAuthenticateMessageDoesNotLeak(t *testing.T) {
	missing := Authenticate("", "s3cret")
	wrong := Authenticate("nope", "s3cret")
	if missing.Error() != wrong.Error() {
		t.Errorf("missing and wrong keys produce different messages: %q vs %q", missing, wrong)
	}
}
