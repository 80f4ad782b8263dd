package runlog

import (
	"context"

	. "stdpbench/common"
)

// The hybrid and flat MPI results of one benchmark campaign.
type Campaign struct {
	Hybrid Result
	Flat   Result
}

func (c *Campaign) Dropped() []Dropped {
	return append(append([]Dropped{}, c.Hybrid.Dropped...), c.Flat.Dropped...)
}

func LoadCampaign(ctx context.Context, cfg *AggregateConfig) (*Campaign, error) {
	procs := cfg.Procs()
	hybrid, err := AggregateSources(ctx, cfg, cfg.HybridSources(), procs)
	if err != nil {
		return nil, err
	}
	flat, err := AggregateSources(ctx, cfg, cfg.FlatSources(), procs)
	if err != nil {
		return nil, err
	}
	return &Campaign{Hybrid: hybrid, Flat: flat}, nil
}
