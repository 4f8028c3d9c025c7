package report

import "go.uber.org/atomic"

type IndexerErrors struct {
	ReplayReadFailures   atomic.Uint64 `json:"replay_read_failures"`
	DecoderFailures      atomic.Uint64 `json:"decoder_failures"`
	UnknownChainEvents   atomic.Uint64 `json:"unknown_chain_events"`
	ApplyFailures        atomic.Uint64 `json:"apply_failures"`
	ApplyPermanentErrors atomic.Uint64 `json:"apply_permanent_errors"`
	HaltedChains         atomic.Uint64 `json:"halted_chains"`
}

type IndexerState struct {
	EventsRead       atomic.Uint64 `json:"events_read"`
	EventsDecoded    atomic.Uint64 `json:"events_decoded"`
	EventsApplied    atomic.Uint64 `json:"events_applied"`
	EventsDuplicated atomic.Uint64 `json:"events_duplicated"`
	EventsSkipped    atomic.Uint64 `json:"events_skipped"`

	LastAppliedBlockHeight atomic.Int64 `json:"last_applied_block_height"`

	AverageEventsAppliedPerMinute atomic.Float64 `json:"average_events_applied_per_minute"`
}

type IndexerReport struct {
	State  IndexerState  `json:"state"`
	Errors IndexerErrors `json:"errors"`
}
