// Package trimlasso estimates sparse linear regression models with the
// trimmed Lasso penalty.
//
// The estimator minimizes
//
//	0.5‖y − Xβ‖² + mu·‖β‖₁ + lambda·T_k(β)
//
// where T_k(β) is the sum of the p−k smallest coefficient magnitudes. The
// trim term vanishes exactly when at most k coefficients are non-zero, so a
// large enough lambda enforces k-sparsity without the bias of a plain L1
// penalty on the surviving coefficients.
//
// # Installation
//
//	go get github.com/YuminosukeSato/trimlasso
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/trimlasso/linear"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(6, 3, []float64{
//	        1, 0, 2,
//	        2, 1, 0,
//	        3, 0, 1,
//	        4, 1, 3,
//	        5, 0, 0,
//	        6, 1, 2,
//	    })
//	    y := mat.NewDense(6, 1, []float64{2, 4, 6, 8, 10, 12})
//
//	    model := linear.NewTrimmedLasso(
//	        linear.WithK(1),
//	        linear.WithMu(0.01),
//	        linear.WithLambda(1),
//	    )
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(model.Coef())
//	}
//
// # Methods
//
// Two heuristics run on gonum alone: alternating minimization
// (linear.MethodAltMin, the default) and ADMM (linear.MethodADMM). Two exact
// mixed-integer formulations, SOS1 and big-M, are built as solver.Model values
// and handed to a backend:
//
//   - solver/enum: enumerates binaries and SOS1 branches and solves each
//     convex QP with an operator-splitting routine; small problems only
//   - solver/highs: HiGHS via cgo; LP, continuous QP and linear MIP
//
// # Package Structure
//
//   - trimmed: objective, proximal Lasso subsolver, extreme-point selector, heuristics
//   - exact: SOS1, big-M and convex-envelope model builders
//   - solver: backend-neutral model description and Solver interface
//   - linear: TrimmedLasso estimator
//   - metrics: MSE, RMSE, MAE, R²
//   - datasets: seeded synthetic sparse regression problems
//   - core/model: estimator interfaces, fitted state, weight export
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: structured errors and logging
package trimlasso
