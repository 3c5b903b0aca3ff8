package exitgame

import (
	"plasma.dev/node/plasma"
)

// ExitStarted is emitted when a start-exit call passes the full pipeline.
type ExitStarted struct {
	Initiator plasma.Address
	TxHash    [32]byte
	ExitID    plasma.ExitID
}

// Piggybacked is emitted when a slot claim is admitted.
type Piggybacked struct {
	Claimant  plasma.Address
	TxHash    [32]byte
	SlotIndex uint16
	IsInput   bool
}
