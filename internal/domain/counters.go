package domain

// EffectCounters accumulates the write effects reported by committed chunks.
// Counters only grow within one load invocation.
type EffectCounters struct {
	Nodes         int64
	Relationships int64
	Properties    int64
}

func (c *EffectCounters) Add(other EffectCounters) {
	c.Nodes += other.Nodes
	c.Relationships += other.Relationships
	c.Properties += other.Properties
}
