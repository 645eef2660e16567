package noise

import (
	"fmt"
	"time"

	"github.com/milosgajdos/go-sysid/rnd"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian is gaussian noise.
// Covariance must be positive semi-definite: singular covariance matrices
// model noise which acts on a subspace only, e.g. on velocities.
type Gaussian struct {
	// dist is a multivariate normal distribution; nil if cov is singular
	dist *distmv.Normal
	// factor satisfies factor*factor' = cov when cov is singular
	factor *mat.Dense
	// src is the random source used with factor
	src rand.Source
	// mean is Gaussian mean
	mean []float64
	// cov is Gaussian covariance
	cov mat.Symmetric
	// seed seeds the random source of dist
	seed uint64
}

// NewGaussian creates new Gaussian noise with given mean and covariance
// seeded from the current time.
// It returns error if it fails to create Gaussian.
func NewGaussian(mean []float64, cov mat.Symmetric) (*Gaussian, error) {
	return NewGaussianWithSeed(mean, cov, uint64(time.Now().UnixNano()))
}

// NewGaussianWithSeed creates new Gaussian noise with given mean and covariance.
// Noise created with the same seed generates the same sequence of samples.
// It returns error if it fails to create Gaussian.
func NewGaussianWithSeed(mean []float64, cov mat.Symmetric, seed uint64) (*Gaussian, error) {
	if cov == nil || len(mean) != cov.SymmetricDim() {
		return nil, fmt.Errorf("Invalid Gaussian noise dimensions")
	}

	m := make([]float64, len(mean))
	copy(m, mean)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	g := &Gaussian{
		mean: m,
		cov:  c,
		seed: seed,
	}

	dist, ok := newGaussianDist(m, c, seed)
	if ok {
		g.dist = dist
		return g, nil
	}

	factor, err := rnd.CovFactor(c)
	if err != nil {
		return nil, fmt.Errorf("Failed to create new Gaussian noise: %v", err)
	}
	g.factor = factor
	g.src = rand.NewSource(seed)

	return g, nil
}

// NewIsotropic creates new zero mean Gaussian noise of dimension dim
// whose components are independent with standard deviation std.
// It returns error if dim or std are not positive.
func NewIsotropic(dim int, std float64, seed uint64) (*Gaussian, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("Invalid noise dimension: %d", dim)
	}

	if std <= 0 {
		return nil, fmt.Errorf("Invalid noise standard deviation: %f", std)
	}

	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		cov.SetSym(i, i, std*std)
	}

	return NewGaussianWithSeed(make([]float64, dim), cov, seed)
}

// Sample generates a sample from Gaussian noise and returns it.
func (g *Gaussian) Sample() mat.Vector {
	if g.dist != nil {
		r := g.dist.Rand(nil)
		return mat.NewVecDense(len(r), r)
	}

	z := rnd.FactorN(g.factor, 1, g.src)
	r := mat.Col(nil, 0, z)
	for i := range r {
		r[i] += g.mean[i]
	}

	return mat.NewVecDense(len(r), r)
}

// Cov returns covariance matrix of Gaussian noise.
func (g *Gaussian) Cov() mat.Symmetric {
	cov := mat.NewSymDense(g.cov.SymmetricDim(), nil)
	cov.CopySym(g.cov)

	return cov
}

// Mean returns Gaussian mean.
func (g *Gaussian) Mean() []float64 {
	mean := make([]float64, len(g.mean))
	copy(mean, g.mean)

	return mean
}

// Seed returns the seed of the noise random source.
func (g *Gaussian) Seed() uint64 {
	return g.seed
}

// Reset resets Gaussian noise: the noise restarts its sequence of samples.
func (g *Gaussian) Reset() {
	if g.dist == nil {
		g.src = rand.NewSource(g.seed)
		return
	}
	// the distribution was created with the same parameters before
	g.dist, _ = newGaussianDist(g.mean, g.cov, g.seed)
}

func newGaussianDist(mean []float64, cov mat.Symmetric, seed uint64) (*distmv.Normal, bool) {
	src := rand.New(rand.NewSource(seed))
	return distmv.NewNormal(mean, cov, src)
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, mat.Formatted(g.cov, mat.Prefix("    "), mat.Squeeze()))
}
