package querystate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAndGetVariable(t *testing.T) {
	s := New(context.Background(), 1, nil, nil)
	s.SetVariable("x", int64(5))
	v, ok := s.Variable("x")
	require.True(t, ok)
	require.Equal(t, int64(5), v)
}

func TestMissingVariableNotOK(t *testing.T) {
	s := New(context.Background(), 1, nil, nil)
	_, ok := s.Variable("missing")
	require.False(t, ok)
}

func TestSpanFinishDoesNotPanic(t *testing.T) {
	s := New(context.Background(), 1, nil, nil)
	_, finish := s.Span("test-op")
	finish()
}
