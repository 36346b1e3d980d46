package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"generic not found", errors.NotFound("not found"), true},
		{"entry not found", errors.New(errors.ErrCodeEntryNotFound, "entry not found"), true},
		{"client not found", errors.New(errors.ErrCodeClientNotFound, "client not found"), true},
		{"settings not found", errors.New(errors.ErrCodeSettingsNotFound, "settings not found"), true},
		{"internal error", errors.Internal("internal error"), false},
		{"validation error", errors.New(errors.ErrCodeInvalidMonth, "bad month"), false},
		{"fmt wrapped", fmt.Errorf("delete: %w", errors.New(errors.ErrCodeEntryNotFound, "x")), true},
		{"app wrapped", errors.Wrap(errors.New(errors.ErrCodeClientNotFound, "x"), errors.CodeInternal, "save"), true},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, errors.IsNotFound(tc.err))
		})
	}
}

//Personal.AI order the ending
