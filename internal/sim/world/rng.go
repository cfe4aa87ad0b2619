package world

// Source is the only randomness the engine consumes. Tests may substitute a
// scripted source; sessions use *RNG so the stream can be snapshotted.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// RNG is a splitmix64 generator. Its whole state is one word.
type RNG struct {
	State uint64
}

func NewRNG(seed int64) *RNG {
	return &RNG{State: mix64(uint64(seed) ^ 0x5DEECE66D)}
}

func (r *RNG) Uint64() uint64 {
	r.State += 0x9e3779b97f4a7c15
	return mix64(r.State)
}

// Float64 returns a value in [0,1).
func (r *RNG) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Intn returns a value in [0,n). n <= 0 yields 0.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint64() % uint64(n))
}

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// weightedIndex draws one index by cumulative weight. Non-positive weights
// are never chosen; -1 when nothing is drawable.
func weightedIndex(rng Source, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := rng.Float64() * total
	var acc float64
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if target < acc {
			return i
		}
	}
	return last
}

// chance rolls once against p.
func chance(rng Source, p float64) bool {
	return rng.Float64() < p
}
