package trimmed

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// DefaultStationarityTol is the relative tolerance used to decide whether a
// tied coordinate is already stationary.
const DefaultStationarityTol = 1e-9

// Selector computes the gamma step of alternating minimization: a maximizer
// of lambda·<gamma, beta> over gamma with exactly k entries in {±lambda} and
// the rest zero.
//
// Coordinates strictly above the k-th largest magnitude b_k are always taken
// and those strictly below are never taken. Coordinates equal to b_k are tied;
// how many of them are taken is fixed by k, which ones is decided by a
// first-order test and the TieBreaker.
type Selector struct {
	Tie             TieBreaker
	StationarityTol float64
}

// NewSelector returns a Selector drawing its random choices from tie.
func NewSelector(tie TieBreaker) *Selector {
	return &Selector{Tie: tie, StationarityTol: DefaultStationarityTol}
}

// Select returns gamma for the current beta. It panics with an
// *errors.InvariantError if the number of taken coordinates differs from k.
func (s *Selector) Select(prob *Problem, beta mat.Vector) *mat.VecDense {
	p, k, lambda := beta.Len(), prob.K, prob.Lambda
	gamma := mat.NewVecDense(p, nil)

	bk := kthLargestAbs(beta, k)
	taken := 0
	var tied []int
	for i := 0; i < p; i++ {
		a := math.Abs(beta.AtVec(i))
		switch {
		case a > bk:
			gamma.SetVec(i, lambda*sign(beta.AtVec(i)))
			taken++
		case a == bk:
			tied = append(tied, i)
		}
	}

	need := k - taken
	if need > 0 {
		order := s.Tie.Perm(len(tied))
		cand := make([]int, len(tied))
		for i, j := range order {
			cand[i] = tied[j]
		}
		switch {
		case len(cand) == 1:
			i := cand[0]
			gamma.SetVec(i, lambda*s.signFor(prob, beta, i))
			taken++
		case bk > 0:
			taken += s.resolvePositive(prob, beta, gamma, cand, need)
		default:
			taken += s.resolveZero(prob, beta, gamma, cand, need)
		}
	}

	if taken != k {
		panic(errors.NewInvariantError("Selector.Select", k, taken,
			fmt.Sprintf("b_k=%g tied=%d", bk, len(tied))))
	}
	return gamma
}

// resolvePositive handles ties at a non-zero magnitude. The first candidate is
// dropped when it is not stationary under the combined penalty mu+lambda and
// enough other candidates remain; the rest are filled in order.
func (s *Selector) resolvePositive(prob *Problem, beta mat.Vector, gamma *mat.VecDense, cand []int, need int) int {
	lambda := prob.Lambda
	r := prob.Residual(beta)

	j, rest := cand[0], cand[1:]
	d := mat.Dot(prob.X.ColView(j), r)
	g := d + (prob.Mu+lambda)*sign(beta.AtVec(j))

	taken := 0
	drop := !s.isZero(g, d, prob.Mu+lambda) && len(rest) >= need
	if !drop {
		gamma.SetVec(j, lambda*sign(beta.AtVec(j)))
		taken++
	}
	for _, i := range rest {
		if taken == need {
			break
		}
		gamma.SetVec(i, lambda*sign(beta.AtVec(i)))
		taken++
	}
	return taken
}

// resolveZero handles ties at zero magnitude. The first candidate whose
// directional derivative exceeds mu is given the descent sign; the remaining
// slots get random signs.
func (s *Selector) resolveZero(prob *Problem, beta mat.Vector, gamma *mat.VecDense, cand []int, need int) int {
	lambda := prob.Lambda
	r := prob.Residual(beta)

	taken := 0
	fixed := -1
	for _, i := range cand {
		d := mat.Dot(prob.X.ColView(i), r)
		if math.Abs(d) > prob.Mu {
			gamma.SetVec(i, -lambda*sign(d))
			taken++
			fixed = i
			break
		}
	}
	for _, i := range cand {
		if taken == need {
			break
		}
		if i == fixed {
			continue
		}
		gamma.SetVec(i, lambda*s.Tie.Sign())
		taken++
	}
	return taken
}

// signFor returns the sign a lone tied coordinate is taken with: its own sign
// when non-zero, otherwise the descent direction or a random sign.
func (s *Selector) signFor(prob *Problem, beta mat.Vector, i int) float64 {
	if v := sign(beta.AtVec(i)); v != 0 {
		return v
	}
	d := mat.Dot(prob.X.ColView(i), prob.Residual(beta))
	if math.Abs(d) > prob.Mu {
		return -sign(d)
	}
	return s.Tie.Sign()
}

// isZero reports whether g vanishes relative to the magnitudes it was built from.
func (s *Selector) isZero(g, d, pen float64) bool {
	tol := s.StationarityTol
	if tol <= 0 {
		tol = DefaultStationarityTol
	}
	scale := math.Max(1, math.Max(math.Abs(d), pen))
	return math.Abs(g) <= tol*scale
}
