// Package router resolves which risk engine shard owns a participant.
package router

import "matching-core/domain"

// Router assigns each participant id to one of a fixed number of risk
// shards, giving one participant's balance mutations a single
// serialization point.
type Router struct {
	shards int
}

// New builds a router over shardCount risk shards. shardCount must be
// positive.
func New(shardCount int) Router {
	if shardCount <= 0 {
		panic("router: shard count must be positive")
	}
	return Router{shards: shardCount}
}

// ShardOf returns the risk shard index responsible for participantID.
func (r Router) ShardOf(participantID domain.ParticipantID) int {
	return int(uint64(participantID) % uint64(r.shards))
}

// ShardCount returns the number of shards this router was built with.
func (r Router) ShardCount() int { return r.shards }
