package exitgame

import (
	"plasma.dev/node/plasma"
)

// SpendingCondition proves that a given prior output was authorized to be
// spent by a specific transaction. Implementations are registered per
// (output type, spending tx type) pair and define their own authorization
// logic: signature checks, multisigs, arbitrary predicates.
type SpendingCondition interface {
	Verify(
		outputGuard plasma.OutputGuard,
		utxoPos plasma.UtxoPos,
		outputID plasma.OutputID,
		txBytes []byte,
		inputIndex uint16,
		witness []byte,
	) (bool, error)
}

// OutputGuardParser recovers the payout target from a guard preimage for a
// non-plain output type.
type OutputGuardParser interface {
	ParsePayoutTarget(payload []byte) (plasma.Address, error)
}

type ConditionKey struct {
	OutputType uint16
	TxType     uint16
}

type quarantined[T any] struct {
	handler      T
	registeredAt uint64
}

// SpendingConditionRegistry maps (output type, tx type) pairs to their
// registered condition. New registrations sit in quarantine for a fixed
// number of ledger seconds before Lookup will hand them out, bounding the
// blast radius of a faulty registration.
type SpendingConditionRegistry struct {
	quarantinePeriod uint64
	conditions       map[ConditionKey]quarantined[SpendingCondition]
}

func NewSpendingConditionRegistry(quarantinePeriod uint64) *SpendingConditionRegistry {
	return &SpendingConditionRegistry{
		quarantinePeriod: quarantinePeriod,
		conditions:       make(map[ConditionKey]quarantined[SpendingCondition]),
	}
}

func (r *SpendingConditionRegistry) Register(key ConditionKey, c SpendingCondition, now uint64) error {
	if c == nil {
		return plasma.Errf(plasma.IFE_ERR_PARSE, "registry: nil condition")
	}
	if _, ok := r.conditions[key]; ok {
		return plasma.Errf(plasma.IFE_ERR_PARSE, "registry: condition already registered for (%d,%d)", key.OutputType, key.TxType)
	}
	r.conditions[key] = quarantined[SpendingCondition]{handler: c, registeredAt: now}
	return nil
}

// Lookup resolves the condition for key, or nil if none is registered.
// A registered but still-quarantined condition resolves as an error.
func (r *SpendingConditionRegistry) Lookup(key ConditionKey, now uint64) (SpendingCondition, error) {
	q, ok := r.conditions[key]
	if !ok {
		return nil, nil
	}
	if now-q.registeredAt < r.quarantinePeriod {
		return nil, plasma.Errf(plasma.IFE_ERR_QUARANTINED, "condition (%d,%d) in quarantine", key.OutputType, key.TxType)
	}
	return q.handler, nil
}

// OutputGuardParserRegistry maps output types to their guard parsers, with
// the same quarantine gating as the condition registry.
type OutputGuardParserRegistry struct {
	quarantinePeriod uint64
	parsers          map[uint16]quarantined[OutputGuardParser]
}

func NewOutputGuardParserRegistry(quarantinePeriod uint64) *OutputGuardParserRegistry {
	return &OutputGuardParserRegistry{
		quarantinePeriod: quarantinePeriod,
		parsers:          make(map[uint16]quarantined[OutputGuardParser]),
	}
}

func (r *OutputGuardParserRegistry) Register(outputType uint16, p OutputGuardParser, now uint64) error {
	if p == nil {
		return plasma.Errf(plasma.IFE_ERR_PARSE, "registry: nil parser")
	}
	if _, ok := r.parsers[outputType]; ok {
		return plasma.Errf(plasma.IFE_ERR_PARSE, "registry: parser already registered for type %d", outputType)
	}
	r.parsers[outputType] = quarantined[OutputGuardParser]{handler: p, registeredAt: now}
	return nil
}

func (r *OutputGuardParserRegistry) Lookup(outputType uint16, now uint64) (OutputGuardParser, error) {
	q, ok := r.parsers[outputType]
	if !ok {
		return nil, nil
	}
	if now-q.registeredAt < r.quarantinePeriod {
		return nil, plasma.Errf(plasma.IFE_ERR_QUARANTINED, "parser for type %d in quarantine", outputType)
	}
	return q.handler, nil
}
