package errors

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("something failed")
	assert.Equal(t, "something failed", err.Error())
	assert.Nil(t, stderrors.Unwrap(err))
	assert.True(t, strings.HasPrefix(err.Location(), "errors_test.go:"))
}

func TestNewWithFields(t *testing.T) {
	err := New("bad rule", map[string]interface{}{"expr": "([", "weight": 0.5})
	fields := err.GetFields()
	assert.Equal(t, "([", fields["expr"])
	assert.Equal(t, 0.5, fields["weight"])
}

func TestWrap(t *testing.T) {
	base := stderrors.New("connection refused")
	err := Wrap(base, "failed to connect")

	assert.Equal(t, "failed to connect: connection refused", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, base, stderrors.Unwrap(err))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "irrelevant"))
}

func TestWrapSentinel(t *testing.T) {
	err := Wrap(ErrMonitorAlreadyRunning, "start rejected")
	assert.ErrorIs(t, err, ErrMonitorAlreadyRunning)
	assert.NotErrorIs(t, err, ErrMonitorNotRunning)
}

func TestWithFieldCopies(t *testing.T) {
	original := New("base", map[string]interface{}{"a": 1})
	derived := original.WithField("b", 2)

	require.NotSame(t, original, derived)
	assert.Equal(t, 1, derived.GetFields()["a"])
	assert.Equal(t, 2, derived.GetFields()["b"])
	assert.NotContains(t, original.GetFields(), "b")
}

func TestNestedWrap(t *testing.T) {
	inner := Wrap(ErrInvalidInput, "parse failed")
	outer := Wrap(inner, "request rejected")

	assert.ErrorIs(t, outer, ErrInvalidInput)
	assert.Contains(t, outer.Error(), "request rejected")
	assert.Contains(t, outer.Error(), "parse failed")
}
