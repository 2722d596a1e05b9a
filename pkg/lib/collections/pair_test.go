//go:build unit || !integration

package collections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPair(t *testing.T) {
	pair := NewPair("vcpus", 4)
	require.Equal(t, "vcpus", pair.Left)
	require.Equal(t, 4, pair.Right)
}

func TestPairString(t *testing.T) {
	require.Equal(t, "(Job Queue, default-gwf-core)", NewPair[any, any]("Job Queue", "default-gwf-core").String())
	require.Equal(t, "(0.5, 16384)", NewPair[any, any](0.5, 16384).String())
}
