// Package log defines standard attribute keys for solver logging.
//
// Using these keys keeps records from the heuristics, the exact-model adapter
// and the estimator façade filterable by the same names. Keys follow a
// hierarchical naming convention ("solver.method", "data.samples").

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type, e.g. "TrimmedLasso".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "solve"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "trimmed", "exact", "solver/enum"
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows of X).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns of X, p).
	FeaturesKey = "data.features"

	// SparsityKey records the sparsity target k.
	SparsityKey = "data.sparsity"
)

// Iteration and Performance
const (
	// IterationKey records the current outer iteration number.
	IterationKey = "training.iteration"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"
)

// Solver State
const (
	// SolverMethodKey names the heuristic or exact formulation in use.
	// Standard values: MethodAltMin, MethodADMM, MethodSOS1, MethodBigM, MethodEnvelope
	SolverMethodKey = "solver.method"

	// SolverBackendKey names the external solver backend, e.g. "enum", "highs".
	SolverBackendKey = "solver.backend"

	// ObjectiveKey records the trimmed Lasso objective value.
	ObjectiveKey = "solver.objective"

	// ResidualKey records ‖beta − gamma‖ for ADMM.
	ResidualKey = "solver.residual"

	// ConvergedKey records whether the stopping rule fired before the budget ran out.
	ConvergedKey = "solver.converged"

	// InnerIterationsKey records iterations spent in the proximal subsolver.
	InnerIterationsKey = "solver.inner_iterations"
)

// Hyperparameters
const (
	// MuKey records the ordinary L1 weight.
	MuKey = "hyperparams.mu"

	// LambdaKey records the trim penalty weight.
	LambdaKey = "hyperparams.lambda"

	// SigmaKey records the ADMM penalty parameter.
	SigmaKey = "hyperparams.sigma"

	// BigMKey records the big-M bound.
	BigMKey = "hyperparams.big_m"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSolve   = "solve"

	MethodAltMin   = "altmin"
	MethodADMM     = "admm"
	MethodSOS1     = "sos1"
	MethodBigM     = "bigm"
	MethodEnvelope = "envelope"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorBigMBinding       = "BIGM_BINDING"
	ErrorSolver            = "SOLVER_FAILURE"
)
