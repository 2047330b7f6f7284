package terrain

import (
	"math"
	"math/rand"
)

// Perlin is seeded 3D gradient noise. The same seed always yields the same
// field.
type Perlin struct {
	perm [512]uint8
}

// NewPerlin builds the permutation table from seed.
func NewPerlin(seed int64) *Perlin {
	rng := rand.New(rand.NewSource(seed))
	p := &Perlin{}
	order := rng.Perm(256)
	for i := 0; i < 256; i++ {
		p.perm[i] = uint8(order[i])
		p.perm[i+256] = uint8(order[i])
	}
	return p
}

// Noise3 returns noise at (x, y, z), roughly in [-1, 1].
func (p *Perlin) Noise3(x, y, z float64) float64 {
	xf, yf, zf := math.Floor(x), math.Floor(y), math.Floor(z)
	xi, yi, zi := int(xf)&255, int(yf)&255, int(zf)&255
	x, y, z = x-xf, y-yf, z-zf
	u, v, w := fade(x), fade(y), fade(z)

	a := int(p.perm[xi]) + yi
	aa := int(p.perm[a]) + zi
	ab := int(p.perm[a+1]) + zi
	b := int(p.perm[xi+1]) + yi
	ba := int(p.perm[b]) + zi
	bb := int(p.perm[b+1]) + zi

	return lerp(w,
		lerp(v,
			lerp(u, grad(p.perm[aa], x, y, z), grad(p.perm[ba], x-1, y, z)),
			lerp(u, grad(p.perm[ab], x, y-1, z), grad(p.perm[bb], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p.perm[aa+1], x, y, z-1), grad(p.perm[ba+1], x-1, y, z-1)),
			lerp(u, grad(p.perm[ab+1], x, y-1, z-1), grad(p.perm[bb+1], x-1, y-1, z-1))))
}

// FBM sums octaves of noise; each octave scales amplitude by persistence and
// frequency by lacunarity. The result is normalized by the total amplitude.
func (p *Perlin) FBM(x, y, z float64, octaves int, frequency, persistence, lacunarity float64) float64 {
	var sum, norm float64
	amp := 1.0
	for o := 0; o < octaves; o++ {
		sum += amp * p.Noise3(x*frequency, y*frequency, z*frequency)
		norm += amp
		amp *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash uint8, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
