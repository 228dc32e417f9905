// Package trimmed implements heuristic solvers for the trimmed Lasso
//
//	minimize  0.5·‖y − X·beta‖² + mu·‖beta‖₁ + lambda·T_k(beta)
//
// where T_k(beta) is the sum of the p−k smallest coefficient magnitudes.
// Penalizing only those coefficients drives the estimate towards exact
// k-sparsity.
//
// Two drivers are provided. AlternatingMinimizer runs the difference-of-convex
// scheme: it picks an extreme point gamma of the subdifferential of
// lambda·(sum of the k largest |beta_i|) with Selector, then solves the convex
// Lasso subproblem with a LassoSolver. ADMM splits beta = gamma and alternates
// a proximal Lasso step on beta, a closed-form top-(p−k) selection on gamma and
// a dual update.
//
// Both drivers are single-threaded fixed-point iterations. Every source of
// randomness (initial beta, tie resolution, coordinate ordering) comes from a
// TieBreaker seeded by the caller, so a solve is reproducible from its seed.
package trimmed
