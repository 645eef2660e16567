package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stability is the fraction of trajectory steps whose state stays within threshold of target in every component.
type Stability struct {
	name       string
	target     []float64
	threshold  float64
	violations int
	samples    int
}

// NewStability creates new stability metric.
func NewStability(target mat.Vector, threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		target:    mat.Col(nil, 0, target),
		threshold: threshold,
	}
}

// Name returns metric name
func (s *Stability) Name() string {
	return s.name
}

// Observe implements Metric.
func (s *Stability) Observe(t int, x, u *mat.Dense) {
	rows, _ := x.Dims()
	for i := 0; i < rows; i++ {
		s.samples++
		for j, val := range x.RawRowView(i) {
			if j >= len(s.target) {
				break
			}
			if math.Abs(val-s.target[j]) > s.threshold {
				s.violations++
				break
			}
		}
	}
}

// Value implements Metric.
func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

// Reset implements Metric.
func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
