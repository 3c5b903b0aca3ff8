package node

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"plasma.dev/node/exitgame"
	"plasma.dev/node/node/store"
	"plasma.dev/node/plasma"
)

// Runtime wires the exit game to its collaborators and serializes the public
// operations. The protocol assumes globally serialized calls; the mutex is
// the Go rendering of that execution model.
type Runtime struct {
	cfg        Config
	log        zerolog.Logger
	db         *store.DB
	ledger     *store.LedgerStore
	game       *exitgame.Game
	conditions *exitgame.SpendingConditionRegistry
	parsers    *exitgame.OutputGuardParserRegistry
	mu         sync.Mutex
}

func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// NewRuntime opens the chain store, initializes it on first run, and builds
// the game with the protocol's built-in condition and parser registered.
// now may be nil for the wall clock.
func NewRuntime(cfg Config, now func() uint64) (*Runtime, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}

	db, err := store.Open(cfg.DataDir, cfg.ChainIDHex)
	if err != nil {
		return nil, err
	}
	if db.Manifest() == nil {
		if err := db.InitChain(cfg.ChainIDHex); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	ledger := store.NewLedgerStore(db, cfg.MinExitPeriod, now)

	conditions := exitgame.NewSpendingConditionRegistry(cfg.QuarantinePeriod)
	parsers := exitgame.NewOutputGuardParserRegistry(cfg.QuarantinePeriod)
	// Protocol built-ins ship live: backdate their registration past the
	// quarantine window.
	live := now() - cfg.QuarantinePeriod
	key := exitgame.ConditionKey{OutputType: plasma.OUTPUT_TYPE_PLAIN, TxType: plasma.TX_TYPE_PAYMENT}
	if err := conditions.Register(key, exitgame.PaymentSpendingCondition{}, live); err != nil {
		_ = db.Close()
		return nil, err
	}

	game := exitgame.NewGame(db, ledger, conditions, parsers, exitgame.NewBondEscrow())

	return &Runtime{
		cfg:        cfg,
		log:        NewLogger(cfg.LogLevel),
		db:         db,
		ledger:     ledger,
		game:       game,
		conditions: conditions,
		parsers:    parsers,
	}, nil
}

func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runtime) Ledger() *store.LedgerStore { return r.ledger }
func (r *Runtime) Store() *store.DB           { return r.db }

// RegisterCondition onboards a new spending condition; it serves lookups
// only after the quarantine period has elapsed.
func (r *Runtime) RegisterCondition(key exitgame.ConditionKey, c exitgame.SpendingCondition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conditions.Register(key, c, r.ledger.Now())
}

// RegisterGuardParser onboards a new output-guard parser under the same
// quarantine rule.
func (r *Runtime) RegisterGuardParser(outputType uint16, p exitgame.OutputGuardParser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.parsers.Register(outputType, p, r.ledger.Now())
}

func (r *Runtime) StartInFlightExit(caller plasma.Address, args exitgame.StartArgs, bond uint64) (*exitgame.ExitStarted, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, err := r.game.StartInFlightExit(caller, args, bond)
	if err != nil {
		r.log.Debug().Err(err).Hex("caller", caller[:]).Msg("start in-flight exit rejected")
		return nil, err
	}
	r.log.Info().
		Hex("initiator", ev.Initiator[:]).
		Hex("tx_hash", ev.TxHash[:]).
		Hex("exit_id", ev.ExitID[:]).
		Msg("in-flight exit started")
	return ev, nil
}

func (r *Runtime) PiggybackInFlightExit(caller plasma.Address, args exitgame.PiggybackArgs, bond uint64) (*exitgame.Piggybacked, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, err := r.game.PiggybackInFlightExit(caller, args, bond)
	if err != nil {
		r.log.Debug().Err(err).Hex("caller", caller[:]).Msg("piggyback rejected")
		return nil, err
	}
	r.log.Info().
		Hex("claimant", ev.Claimant[:]).
		Hex("tx_hash", ev.TxHash[:]).
		Uint16("slot", ev.SlotIndex).
		Bool("is_input", ev.IsInput).
		Msg("exit piggybacked")
	return ev, nil
}

// SubmitChildBlock records the next child-chain commitment root.
func (r *Runtime) SubmitChildBlock(root [32]byte) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blockNum, err := r.ledger.SubmitChildBlock(root)
	if err != nil {
		return 0, fmt.Errorf("submit child block: %w", err)
	}
	r.log.Info().Uint64("block", blockNum).Hex("root", root[:]).Msg("child block committed")
	return blockNum, nil
}

// SubmitDepositBlock records a deposit block between child commitments.
func (r *Runtime) SubmitDepositBlock(root [32]byte) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blockNum, err := r.ledger.SubmitDepositBlock(root)
	if err != nil {
		return 0, fmt.Errorf("submit deposit block: %w", err)
	}
	r.log.Info().Uint64("block", blockNum).Hex("root", root[:]).Msg("deposit block committed")
	return blockNum, nil
}
