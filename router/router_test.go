package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matching-core/domain"
)

func TestShardOfIsModulo(t *testing.T) {
	r := New(4)
	cases := map[domain.ParticipantID]int{
		0: 0, 1: 1, 2: 2, 3: 3, 4: 0, 5: 1, 104: 0,
	}
	for pid, want := range cases {
		assert.Equal(t, want, r.ShardOf(pid), "ShardOf(%d)", pid)
	}
}

func TestShardOfIsStableForSameParticipant(t *testing.T) {
	r := New(8)
	pid := domain.ParticipantID(12345)
	first := r.ShardOf(pid)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, r.ShardOf(pid), "shard assignment must be stable")
	}
}

func TestNewPanicsOnNonPositiveShardCount(t *testing.T) {
	assert.Panics(t, func() { New(0) })
}
