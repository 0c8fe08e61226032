package platform

import (
	"errors"

	"creatorledger/core/events"
	"creatorledger/core/types"
)

var (
	errNilState           = errors.New("platform engine: state not configured")
	errAlreadyInitialized = errors.New("platform engine: config already initialized")
	errNotInitialized     = errors.New("platform engine: config not initialized")
	errUnauthorized       = errors.New("platform engine: admin authority required")
	errInvalidBps         = errors.New("platform engine: liquidity bps out of range")
)

// defaultSalt seeds address derivation for records created after genesis.
const defaultSalt byte = 1

type engineState interface {
	PlatformConfigGet() (*Config, bool, error)
	PlatformConfigPut(cfg *Config) error
}

// Engine manages the platform config singleton and its admin-gated
// mutations.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine constructs a platform engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

// Initialize creates the platform config. A second call fails and leaves the
// existing record untouched.
func (e *Engine) Initialize(admin [20]byte, feeCollector [20]byte) (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, ok, err := e.state.PlatformConfigGet(); err != nil {
		return nil, err
	} else if ok {
		return nil, errAlreadyInitialized
	}
	cfg := &Config{
		Admin:           admin,
		FeeCollector:    feeCollector,
		Paused:          false,
		MinLiquidityBps: DefaultMinLiquidityBps,
		Salt:            defaultSalt,
	}
	if err := e.state.PlatformConfigPut(cfg); err != nil {
		return nil, err
	}
	e.emit(InitializedEvent(hexAddr(admin), hexAddr(feeCollector)))
	return cfg.Clone(), nil
}

func (e *Engine) adminConfig(caller [20]byte) (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, ok, err := e.state.PlatformConfigGet()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, errNotInitialized
	}
	if cfg.Admin != caller {
		return nil, errUnauthorized
	}
	return cfg, nil
}

// Pause halts all value-moving instructions. Admin only.
func (e *Engine) Pause(caller [20]byte) error {
	cfg, err := e.adminConfig(caller)
	if err != nil {
		return err
	}
	cfg.Paused = true
	if err := e.state.PlatformConfigPut(cfg); err != nil {
		return err
	}
	e.emit(PausedEvent(hexAddr(caller)))
	return nil
}

// Unpause restores value-moving instructions. Admin only.
func (e *Engine) Unpause(caller [20]byte) error {
	cfg, err := e.adminConfig(caller)
	if err != nil {
		return err
	}
	cfg.Paused = false
	if err := e.state.PlatformConfigPut(cfg); err != nil {
		return err
	}
	e.emit(UnpausedEvent(hexAddr(caller)))
	return nil
}

// UpdateFeeCollector points fee routing at a new collector. Admin only.
func (e *Engine) UpdateFeeCollector(caller [20]byte, collector [20]byte) error {
	cfg, err := e.adminConfig(caller)
	if err != nil {
		return err
	}
	cfg.FeeCollector = collector
	if err := e.state.PlatformConfigPut(cfg); err != nil {
		return err
	}
	e.emit(FeeCollectorUpdatedEvent(hexAddr(caller), hexAddr(collector)))
	return nil
}

// UpdateAdmin hands the admin authority to a new identity. Admin only.
func (e *Engine) UpdateAdmin(caller [20]byte, admin [20]byte) error {
	cfg, err := e.adminConfig(caller)
	if err != nil {
		return err
	}
	cfg.Admin = admin
	if err := e.state.PlatformConfigPut(cfg); err != nil {
		return err
	}
	e.emit(AdminUpdatedEvent(hexAddr(caller), hexAddr(admin)))
	return nil
}

// UpdateMinLiquidityBps adjusts the liquidity floor. Admin only; capped at
// 50%.
func (e *Engine) UpdateMinLiquidityBps(caller [20]byte, bps uint64) error {
	if bps > MaxMinLiquidityBps {
		return errInvalidBps
	}
	cfg, err := e.adminConfig(caller)
	if err != nil {
		return err
	}
	cfg.MinLiquidityBps = bps
	if err := e.state.PlatformConfigPut(cfg); err != nil {
		return err
	}
	e.emit(MinLiquidityUpdatedEvent(hexAddr(caller), bps))
	return nil
}

// Config returns the current platform config without mutating state.
func (e *Engine) Config() (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, ok, err := e.state.PlatformConfigGet()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, errNotInitialized
	}
	return cfg.Clone(), nil
}
