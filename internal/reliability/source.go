package reliability

import "math/rand/v2"

// source wraps a seeded PRNG so simulation runs are reproducible.
type source struct {
	rng *rand.Rand
}

func newSource(seed uint64) *source {
	return &source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *source) normal(mu, sigma float64) float64 {
	return mu + sigma*s.rng.NormFloat64()
}
