package hion

import "fmt"

// Weighted is anything carrying a non-negative selection weight.
type Weighted interface {
	Weight() float64
}

// ChannelList accumulates candidate outgoing channels with weights and
// supports stochastic selection proportional to weight. It is generic over
// the channel payload so that different action variants can reuse it.
type ChannelList[T Weighted] struct {
	channels []T
	total    float64
}

// Add appends a channel and increases the running total by its weight.
func (l *ChannelList[T]) Add(c T) {
	l.channels = append(l.channels, c)
	l.total += c.Weight()
}

// AddAll appends a batch of channels.
func (l *ChannelList[T]) AddAll(cs ...T) {
	for _, c := range cs {
		l.Add(c)
	}
}

// Total returns the running sum of all registered weights.
func (l *ChannelList[T]) Total() float64 { return l.total }

// Channels returns the registered channels in insertion order.
func (l *ChannelList[T]) Channels() []T { return l.channels }

// Choose draws a uniform number in [0, total) and walks the channels in
// insertion order until the cumulative weight exceeds the draw. Selecting
// from an empty list or a non-positive total is a programming error, not a
// physics outcome, and is reported as such.
func (l *ChannelList[T]) Choose(rng RandomSource) (T, error) {
	var zero T
	if len(l.channels) == 0 {
		return zero, fmt.Errorf("channel selection from an empty channel list")
	}
	if l.total <= 0 {
		return zero, fmt.Errorf("channel selection with non-positive total weight %g", l.total)
	}
	draw := rng.Uniform(0, l.total)
	sum := 0.0
	for _, c := range l.channels {
		sum += c.Weight()
		if draw < sum {
			return c, nil
		}
	}
	// Floating-point accumulation can leave the draw a hair above the final
	// sum; the last channel is then the correct pick.
	return l.channels[len(l.channels)-1], nil
}

// CollisionBranch is one candidate outgoing channel of a collision: the
// outgoing species list, the process family tag and the probability or
// cross-section weight of the channel.
type CollisionBranch struct {
	Products []*Species
	Type     ProcessType
	weight   float64
}

// NewCollisionBranch creates a branch with the given weight, process type
// and outgoing species.
func NewCollisionBranch(weight float64, pt ProcessType, products ...*Species) *CollisionBranch {
	return &CollisionBranch{
		Products: products,
		Type:     pt,
		weight:   weight,
	}
}

// Weight returns the channel weight.
func (b *CollisionBranch) Weight() float64 { return b.weight }
