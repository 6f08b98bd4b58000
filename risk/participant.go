package risk

import "matching-core/domain"

// Participant holds one account's settlement balances, keyed by asset.
type Participant struct {
	ID     domain.ParticipantID
	Assets map[domain.AssetID]uint64
}

// NewParticipant creates a participant with the given starting balances.
// The caller-supplied map is taken by reference, not copied.
func NewParticipant(id domain.ParticipantID, assets map[domain.AssetID]uint64) *Participant {
	if assets == nil {
		assets = make(map[domain.AssetID]uint64)
	}
	return &Participant{ID: id, Assets: assets}
}
