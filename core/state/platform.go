package state

import "creatorledger/native/platform"

type storedPlatformConfig struct {
	Admin           [20]byte
	FeeCollector    [20]byte
	Paused          bool
	MinLiquidityBps uint64
	Salt            byte
}

// PlatformConfigGet loads the platform singleton.
func (m *Manager) PlatformConfigGet() (*platform.Config, bool, error) {
	stored := new(storedPlatformConfig)
	ok, err := m.getRecord(platformConfigKey(), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &platform.Config{
		Admin:           stored.Admin,
		FeeCollector:    stored.FeeCollector,
		Paused:          stored.Paused,
		MinLiquidityBps: stored.MinLiquidityBps,
		Salt:            stored.Salt,
	}, true, nil
}

// PlatformConfigPut persists the platform singleton.
func (m *Manager) PlatformConfigPut(cfg *platform.Config) error {
	return m.putRecord(platformConfigKey(), &storedPlatformConfig{
		Admin:           cfg.Admin,
		FeeCollector:    cfg.FeeCollector,
		Paused:          cfg.Paused,
		MinLiquidityBps: cfg.MinLiquidityBps,
		Salt:            cfg.Salt,
	})
}

// IsPaused reports the global pause flag. The flag halts value-moving
// instructions in every module, so the module name only scopes the check.
// A backend read error counts as paused: the flag must never fail open.
// An absent config (pre-bootstrap) is unpaused.
func (m *Manager) IsPaused(module string) bool {
	cfg, ok, err := m.PlatformConfigGet()
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return cfg.Paused
}
