package urlinfo

import (
	"errors"
	"testing"
)

// TestPolicyValidate tests fail-fast detection of misconfigured policies.
func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	t.Run("default policy is valid", func(t *testing.T) {
		t.Parallel()

		if err := DefaultPolicy().Validate(); err != nil {
			t.Errorf("DefaultPolicy().Validate() = %v", err)
		}
	})

	t.Run("non positive max length", func(t *testing.T) {
		t.Parallel()

		p := DefaultPolicy()
		p.MaxLength = 0
		if err := p.Validate(); !errors.Is(err, ErrPolicyMaxLength) {
			t.Errorf("got %v, want ErrPolicyMaxLength", err)
		}
	})

	t.Run("non positive max path length", func(t *testing.T) {
		t.Parallel()

		p := DefaultPolicy()
		p.MaxPathLength = -1
		if err := p.Validate(); !errors.Is(err, ErrPolicyMaxPathLength) {
			t.Errorf("got %v, want ErrPolicyMaxPathLength", err)
		}
	})

	t.Run("max port out of range", func(t *testing.T) {
		t.Parallel()

		p := DefaultPolicy()
		p.MaxPort = 70000
		if err := p.Validate(); !errors.Is(err, ErrPolicyMaxPort) {
			t.Errorf("got %v, want ErrPolicyMaxPort", err)
		}
	})

	t.Run("scheme both allowed and blocked", func(t *testing.T) {
		t.Parallel()

		p := DefaultPolicy()
		p.AllowedSchemes = map[string]bool{"javascript": true}
		if err := p.Validate(); !errors.Is(err, ErrPolicySchemeConflict) {
			t.Errorf("got %v, want ErrPolicySchemeConflict", err)
		}
	})
}
