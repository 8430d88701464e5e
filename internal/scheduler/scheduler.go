package scheduler

import (
	"math/big"

	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/registry"
)

// Pair is one scheduled probe: swap AmountIn of In for Out.
type Pair struct {
	In       registry.Asset
	Out      registry.Asset
	AmountIn *big.Int
}

// Scheduler orders asset pairs for a scan cycle. It is stateless: Pairs
// returns the full ordered sequence fresh each call.
type Scheduler struct {
	reg *registry.Registry
	cfg *config.Config
}

func New(reg *registry.Registry, cfg *config.Config) *Scheduler {
	return &Scheduler{reg: reg, cfg: cfg}
}

// Scheduled tier combinations, highest priority first. Pairs outside these
// combinations are not probed.
var tierOrder = [][2]int{
	{registry.TierStable, registry.TierStable},
	{registry.TierStable, registry.TierMajor},
	{registry.TierMajor, registry.TierVolatile},
}

func (s *Scheduler) Pairs() []Pair {
	var out []Pair
	for _, combo := range tierOrder {
		for _, in := range s.reg.Assets {
			if in.Tier != combo[0] {
				continue
			}
			for _, dst := range s.reg.Assets {
				if dst.Tier != combo[1] || dst.Address == in.Address {
					continue
				}
				out = append(out, Pair{
					In:       in,
					Out:      dst,
					AmountIn: in.Notional(s.notionalUnits(in.Tier)),
				})
			}
		}
	}
	return out
}

// notionalUnits picks the probe size for the input tier: large for stables,
// small for volatile assets, bounding price-impact risk per probe. The probe
// amount is also the flash-loan size, so stable probes (1 unit = 1 USD) are
// capped at the configured maximum loan.
func (s *Scheduler) notionalUnits(tier int) float64 {
	switch tier {
	case registry.TierStable:
		units := s.cfg.Trading.NotionalTier1
		if limit := s.cfg.Trading.MaxLoanUSD; limit > 0 && units > limit {
			units = limit
		}
		return units
	case registry.TierMajor:
		return s.cfg.Trading.NotionalTier2
	default:
		return s.cfg.Trading.NotionalTier3
	}
}
