package platform

// ModuleName tags platform records and pause checks.
const ModuleName = "platform"

// FeeBps is the platform cut, in basis points, applied to fee-bearing
// operations (share trades, subscriptions, marketplace settlement).
const FeeBps = 250

// DefaultMinLiquidityBps is the liquidity floor applied to curve pools until
// governance or the admin adjusts it.
const DefaultMinLiquidityBps = 1000

// MaxMinLiquidityBps caps admin updates to the liquidity floor at 50%.
const MaxMinLiquidityBps = 5000

// Config is the global platform singleton. It is created exactly once and
// mutated only through admin instructions.
type Config struct {
	Admin           [20]byte `json:"admin"`
	FeeCollector    [20]byte `json:"feeCollector"`
	Paused          bool     `json:"paused"`
	MinLiquidityBps uint64   `json:"minLiquidityBps"`
	Salt            byte     `json:"salt"`
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
