package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/chris-alexander-pop/persiqueue/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCategoryConstructors(t *testing.T) {
	cases := []struct {
		name string
		err  *errors.AppError
		cat  errors.Category
	}{
		{"not-found", errors.NotFound("missing", nil), errors.CategoryNotFound},
		{"conflict", errors.Conflict("taken", nil), errors.CategoryConflict},
		{"invalid", errors.InvalidArgument("bad", nil), errors.CategoryInvalidArgument},
		{"forbidden", errors.Forbidden("nope", nil), errors.CategoryForbidden},
		{"internal", errors.Internal("boom", nil), errors.CategoryInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.cat, tc.err.Category)
		})
	}
}

func TestUnwrapChains(t *testing.T) {
	cause := stderrors.New("disk full")
	wrapped := errors.Internal("write failed", cause)

	require.ErrorIs(t, wrapped, cause)
	require.Contains(t, wrapped.Error(), "disk full")
}

func TestWrapPreservesCategory(t *testing.T) {
	base := errors.NotFound("queue not found", nil)
	wrapped := errors.Wrap(base, "opening queue")

	require.Equal(t, errors.CategoryNotFound, wrapped.Category)
	require.Contains(t, wrapped.Message, "queue not found")
}

func TestWrapFallsBackToInternal(t *testing.T) {
	wrapped := errors.Wrap(stderrors.New("plain"), "context")
	require.Equal(t, errors.CategoryInternal, wrapped.Category)
}
