package rnd

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// psdTol is the relative tolerance of negative eigenvalues of positive semi-definite matrices
const psdTol = 1e-12

// CovFactor returns matrix L such that L*L' = cov.
// Unlike Cholesky factorization it accepts singular covariance matrices.
// It fails with error if cov is not positive semi-definite or if its eigen decomposition fails.
func CovFactor(cov mat.Symmetric) (*mat.Dense, error) {
	if cov == nil || cov.SymmetricDim() == 0 {
		return nil, fmt.Errorf("invalid covariance matrix")
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, fmt.Errorf("eigen decomposition failed")
	}

	vals := eig.Values(nil)
	tol := psdTol * math.Max(1, floats.Max(vals))
	for i, v := range vals {
		if v < -tol {
			return nil, fmt.Errorf("covariance matrix is not positive semi-definite")
		}
		vals[i] = math.Sqrt(math.Max(v, 0))
	}

	L := new(mat.Dense)
	eig.VectorsTo(L)
	L.Mul(L, mat.NewDiagDense(len(vals), vals))

	return L, nil
}

// WithCovN draws n random samples from a zero-mean Normal (aka Gaussian) distribution with covariance cov
// using random source src. It returns matrix which contains the samples stored in its columns.
// It fails with error if n is not positive or if cov is not positive semi-definite.
func WithCovN(cov mat.Symmetric, n int, src rand.Source) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples requested: %d", n)
	}

	L, err := CovFactor(cov)
	if err != nil {
		return nil, err
	}

	return FactorN(L, n, src), nil
}

// FactorN draws n random samples from a zero-mean Normal distribution with covariance L*L'
// using random source src. It returns matrix which contains the samples stored in its columns.
func FactorN(L mat.Matrix, n int, src rand.Source) *mat.Dense {
	rows, cols := L.Dims()

	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	data := make([]float64, cols*n)
	for i := range data {
		data[i] = norm.Rand()
	}

	samples := mat.NewDense(rows, n, nil)
	samples.Mul(L, mat.NewDense(cols, n, data))

	return samples
}
