package ticketing

import "github.com/Jacobbrewer1/tickets/pkg/entities"

// NextNumber increments and returns the guild's ticket counter. The caller must hold the guild
// lock and persist the config for the number to be allocated; numbers are never handed out twice
// but may be skipped when an open fails after allocation.
func NextNumber(cfg *entities.GuildConfig) int64 {
	cfg.SequenceCounter++
	return cfg.SequenceCounter
}
