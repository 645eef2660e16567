package noise

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/traj"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Batch draws batch x steps samples from n and returns them as a
// batch x steps x dim tensor, where dim is the dimension of the noise.
// Samples are drawn one trajectory after another, in step order,
// so noise with a fixed seed always yields the same tensor.
// It returns error if n has no dimension or batch or steps are not positive.
func Batch(n sysid.Noise, batch, steps int) (*traj.Tensor, error) {
	if n == nil {
		return nil, fmt.Errorf("invalid noise: nil")
	}

	dim := len(n.Mean())
	t, err := traj.New(batch, steps, dim, nil)
	if err != nil {
		return nil, err
	}

	for b := 0; b < batch; b++ {
		for s := 0; s < steps; s++ {
			sample := n.Sample()
			if sample.Len() != dim {
				return nil, fmt.Errorf("%w: noise sample length %d, expected %d", sysid.ErrDimensionMismatch, sample.Len(), dim)
			}
			for i := 0; i < dim; i++ {
				t.Set(b, s, i, sample.AtVec(i))
			}
		}
	}

	return t, nil
}

// SampleCov returns the empirical covariance of all the samples stored in t.
// Every step of every batch element is treated as a single observation.
// It returns error if t holds fewer than two observations.
func SampleCov(t *traj.Tensor) (*mat.SymDense, error) {
	batch, steps, dim := t.Dims()
	n := batch * steps
	if n < 2 {
		return nil, fmt.Errorf("not enough samples to estimate covariance: %d", n)
	}

	obs := mat.NewDense(n, dim, t.RawData())
	cov := mat.NewSymDense(dim, nil)
	stat.CovarianceMatrix(cov, obs, nil)

	return cov, nil
}
