package hion

import "math/rand"

// RandomSource supplies uniform random draws. It is owned by the caller and
// shared between all actions so that seeded runs stay bit-reproducible: the
// only contract is that a single action consumes draws in a fixed order
// (choose channel, then masses, then angles).
type RandomSource interface {
	// Uniform returns a draw uniformly distributed in [low, high).
	Uniform(low, high float64) float64
}

type mathRandSource struct {
	r *rand.Rand
}

func (s *mathRandSource) Uniform(low, high float64) float64 {
	return low + (high-low)*s.r.Float64()
}

// NewRandomSource creates a seeded RandomSource backed by math/rand.
func NewRandomSource(seed int64) RandomSource {
	return &mathRandSource{r: rand.New(rand.NewSource(seed))}
}

// Context bundles the externally-owned collaborators every action needs:
// the shared random generator, the species table and a logger. Passing it
// explicitly keeps determinism and testability without global state.
type Context struct {
	Rand    RandomSource
	Species *SpeciesTable
	Logger  Logger
}

// NewContext creates a context with the given random source and species
// table. Logging defaults to a no-op logger.
func NewContext(rng RandomSource, species *SpeciesTable) *Context {
	return &Context{
		Rand:    rng,
		Species: species,
		Logger:  NewNoOpLogger(),
	}
}

// WithLogger replaces the context logger and returns the context for
// chaining.
func (c *Context) WithLogger(l Logger) *Context {
	c.Logger = l
	return c
}
