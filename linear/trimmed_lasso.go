// Package linear provides the TrimmedLasso estimator, a scikit-learn style
// façade over the heuristic and exact trimmed Lasso solvers.
package linear

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/trimlasso/core/model"
	"github.com/YuminosukeSato/trimlasso/exact"
	"github.com/YuminosukeSato/trimlasso/metrics"
	"github.com/YuminosukeSato/trimlasso/pkg/errors"
	"github.com/YuminosukeSato/trimlasso/pkg/log"
	"github.com/YuminosukeSato/trimlasso/preprocessing"
	"github.com/YuminosukeSato/trimlasso/solver"
	"github.com/YuminosukeSato/trimlasso/solver/enum"
	"github.com/YuminosukeSato/trimlasso/trimmed"
)

// Method selects how TrimmedLasso is solved.
type Method string

const (
	// MethodAltMin is alternating minimization (heuristic).
	MethodAltMin Method = log.MethodAltMin
	// MethodADMM is the ADMM heuristic.
	MethodADMM Method = log.MethodADMM
	// MethodSOS1 is the exact SOS1 formulation.
	MethodSOS1 Method = log.MethodSOS1
	// MethodBigM is the exact big-M formulation.
	MethodBigM Method = log.MethodBigM
)

const (
	modelName = "TrimmedLasso"
	version   = "1.0.0"

	// DefaultLambda is the default trim penalty weight.
	DefaultLambda = 1.0
)

// TrimmedLasso is a sparse linear regression model fitted by minimizing
//
//	0.5‖y − Xβ‖² + mu·‖β‖₁ + lambda·T_k(β)
//
// where T_k is the sum of the p−k smallest coefficient magnitudes.
type TrimmedLasso struct {
	k            int
	mu           float64
	lambda       float64
	method       Method
	sigma        float64
	maxIter      int
	tol          float64
	randomState  int64
	backend      solver.Solver
	bigM         float64
	fitIntercept bool
	logger       log.Logger

	state     *model.StateManager
	coef      *mat.VecDense
	intercept float64
	nIter     int
	objective float64
	converged bool
}

// NewTrimmedLasso creates an unfitted estimator.
func NewTrimmedLasso(opts ...Option) *TrimmedLasso {
	tl := &TrimmedLasso{
		lambda:       DefaultLambda,
		method:       MethodAltMin,
		fitIntercept: true,
		state:        model.NewStateManager(),
	}
	for _, opt := range opts {
		opt(tl)
	}
	return tl
}

// Fit trains the model. y must be an n×1 matrix.
func (tl *TrimmedLasso) Fit(X, y mat.Matrix) error {
	return tl.FitContext(context.Background(), X, y)
}

// FitContext is Fit with a context; the exact methods stop when ctx is done.
// Running out of heuristic iterations is not an error: a ConvergenceWarning
// is emitted and Converged reports false.
func (tl *TrimmedLasso) FitContext(ctx context.Context, X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "TrimmedLasso.Fit")

	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("TrimmedLasso.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry, _ := y.Dims(); ry != n {
		return errors.NewDimensionError("TrimmedLasso.Fit", n, ry, 0)
	}
	yv, err := metrics.ColumnVector("TrimmedLasso.Fit", y)
	if err != nil {
		return err
	}

	logger := tl.baseLogger()
	logger.Info("fit started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.SparsityKey, tl.k,
		log.MuKey, tl.mu,
		log.LambdaKey, tl.lambda,
	)
	start := time.Now()

	Xc, yc, xMean, yMean, err := tl.center(X, yv)
	if err != nil {
		return err
	}
	prob, err := trimmed.NewProblem(Xc, yc, p, tl.k, tl.mu, tl.lambda)
	if err != nil {
		return err
	}

	tl.state.Reset()
	switch tl.method {
	case MethodAltMin:
		res, err := trimmed.NewAlternatingMinimizer(tl.heuristicOptions(logger)...).Solve(prob)
		if err != nil {
			return err
		}
		tl.setHeuristic(res)
	case MethodADMM:
		res, err := trimmed.NewADMM(tl.heuristicOptions(logger)...).Solve(prob)
		if err != nil {
			return err
		}
		tl.setHeuristic(res)
	case MethodSOS1:
		res, err := exact.SOS1(ctx, prob, tl.exactBackend(logger), exact.WithLogger(logger))
		if err != nil {
			return err
		}
		tl.setExact(res)
	case MethodBigM:
		res, err := exact.BigM(ctx, prob, tl.exactBackend(logger), tl.bigM, exact.WithLogger(logger))
		if err != nil {
			return err
		}
		tl.setExact(res)
	default:
		return errors.NewValidationError("method", "must be one of altmin, admm, sos1, bigm", string(tl.method))
	}

	tl.intercept = 0
	if tl.fitIntercept {
		tl.intercept = yMean - mat.Dot(xMean, tl.coef)
	}
	tl.state.SetFitted(p, n)

	fields := []any{
		log.OperationKey, log.OperationFit,
		log.IterationKey, tl.nIter,
		log.ObjectiveKey, tl.objective,
		log.ConvergedKey, tl.converged,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	if r2, err := tl.Score(X, y); err == nil {
		fields = append(fields, log.R2ScoreKey, r2)
	}
	logger.Info("fit finished", fields...)
	return nil
}

func (tl *TrimmedLasso) baseLogger() log.Logger {
	l := tl.logger
	if l == nil {
		l = log.GetLogger()
	}
	return l.With(log.ModelNameKey, modelName, log.SolverMethodKey, string(tl.method))
}

// center returns X and y with column means removed when fitting an
// intercept, together with the means.
func (tl *TrimmedLasso) center(X mat.Matrix, y *mat.VecDense) (*mat.Dense, *mat.VecDense, *mat.VecDense, float64, error) {
	scaler := preprocessing.NewStandardScaler(tl.fitIntercept, false)
	Xc, err := scaler.FitTransform(X)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	yc := mat.VecDenseCopyOf(y)
	if !tl.fitIntercept {
		return Xc, yc, scaler.Mean, 0, nil
	}

	yMean := stat.Mean(yc.RawVector().Data, nil)
	for i := 0; i < yc.Len(); i++ {
		yc.SetVec(i, yc.AtVec(i)-yMean)
	}
	return Xc, yc, scaler.Mean, yMean, nil
}

func (tl *TrimmedLasso) heuristicOptions(logger log.Logger) []trimmed.Option {
	opts := []trimmed.Option{
		trimmed.WithSeed(tl.randomState),
		trimmed.WithLogger(logger),
	}
	if tl.maxIter != 0 {
		opts = append(opts, trimmed.WithMaxIter(tl.maxIter))
	}
	if tl.tol != 0 {
		opts = append(opts, trimmed.WithRelTol(tl.tol))
	}
	if tl.sigma != 0 {
		opts = append(opts, trimmed.WithSigma(tl.sigma))
	}
	return opts
}

func (tl *TrimmedLasso) exactBackend(logger log.Logger) solver.Solver {
	if tl.backend != nil {
		return tl.backend
	}
	return enum.New(enum.WithLogger(logger))
}

func (tl *TrimmedLasso) setHeuristic(res *trimmed.Result) {
	tl.coef = mat.VecDenseCopyOf(res.Coef)
	tl.nIter = res.Iterations
	tl.objective = res.Objective
	tl.converged = res.Converged
}

func (tl *TrimmedLasso) setExact(res *exact.Result) {
	tl.coef = mat.VecDenseCopyOf(res.Beta)
	tl.nIter = res.Nodes
	tl.objective = res.Objective
	tl.converged = true
}

// Predict returns X·coef + intercept as an n×1 matrix.
func (tl *TrimmedLasso) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, c := X.Dims()
	if err := tl.state.RequireFeatures(modelName, "Predict", c); err != nil {
		return nil, err
	}

	var pred mat.VecDense
	pred.MulVec(X, tl.coef)
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, pred.AtVec(i)+tl.intercept)
	}
	return out, nil
}

func (tl *TrimmedLasso) predictPair(method string, X, y mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	if err := tl.state.RequireFitted(modelName, method); err != nil {
		return nil, nil, err
	}
	pred, err := tl.Predict(X)
	if err != nil {
		return nil, nil, err
	}
	yv, err := metrics.ColumnVector(modelName+"."+method, y)
	if err != nil {
		return nil, nil, err
	}
	pv, _ := metrics.ColumnVector(modelName+"."+method, pred)
	return yv, pv, nil
}

// Score returns the coefficient of determination R² of the prediction.
func (tl *TrimmedLasso) Score(X, y mat.Matrix) (float64, error) {
	yv, pv, err := tl.predictPair("Score", X, y)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yv, pv)
}

// Evaluate computes MSE, RMSE, MAE and R² of the prediction.
func (tl *TrimmedLasso) Evaluate(X, y mat.Matrix) (metrics.Report, error) {
	yv, pv, err := tl.predictPair("Evaluate", X, y)
	if err != nil {
		return metrics.Report{}, err
	}
	return metrics.Evaluate(yv, pv)
}

// Coef returns a copy of the fitted coefficients, or nil before Fit.
func (tl *TrimmedLasso) Coef() []float64 {
	if !tl.state.IsFitted() {
		return nil
	}
	return append([]float64(nil), tl.coef.RawVector().Data...)
}

// Intercept returns the fitted intercept.
func (tl *TrimmedLasso) Intercept() float64 { return tl.intercept }

// NIter returns the outer iterations spent by a heuristic method, or the
// number of subproblems solved by an exact method.
func (tl *TrimmedLasso) NIter() int { return tl.nIter }

// Objective returns the trimmed Lasso objective of the fitted coefficients
// on the (centered) training data.
func (tl *TrimmedLasso) Objective() float64 { return tl.objective }

// Converged reports whether the last fit stopped on its tolerance.
func (tl *TrimmedLasso) Converged() bool { return tl.converged }

// IsFitted reports whether Fit has succeeded.
func (tl *TrimmedLasso) IsFitted() bool { return tl.state.IsFitted() }

// GetParams returns the hyperparameters.
func (tl *TrimmedLasso) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"k":             tl.k,
		"mu":            tl.mu,
		"lambda":        tl.lambda,
		"method":        string(tl.method),
		"sigma":         tl.sigma,
		"max_iter":      tl.maxIter,
		"tol":           tl.tol,
		"random_state":  tl.randomState,
		"big_m":         tl.bigM,
		"fit_intercept": tl.fitIntercept,
	}
	if tl.backend != nil {
		params["solver"] = tl.backend.Name()
	}
	return params
}

// ExportWeights exports the fitted state.
func (tl *TrimmedLasso) ExportWeights() (*model.ModelWeights, error) {
	if err := tl.state.RequireFitted(modelName, "ExportWeights"); err != nil {
		return nil, err
	}
	nFeatures, nSamples := tl.state.GetDimensions()
	return &model.ModelWeights{
		ModelType:       modelName,
		Version:         version,
		Coefficients:    tl.Coef(),
		Intercept:       tl.intercept,
		Hyperparameters: tl.GetParams(),
		Metadata: map[string]interface{}{
			"objective":  tl.objective,
			"n_iter":     tl.nIter,
			"converged":  tl.converged,
			"n_features": nFeatures,
			"n_samples":  nSamples,
		},
		IsFitted: true,
	}, nil
}

// ImportWeights restores coefficients and intercept exported by ExportWeights.
// Hyperparameters are not restored.
func (tl *TrimmedLasso) ImportWeights(mw *model.ModelWeights) error {
	if err := mw.Validate(); err != nil {
		return err
	}
	if mw.ModelType != modelName {
		return errors.NewValueError("TrimmedLasso.ImportWeights", "model_type must be "+modelName)
	}
	if !mw.IsFitted {
		return errors.NewNotFittedError(modelName, "ImportWeights")
	}
	tl.coef = mat.NewVecDense(len(mw.Coefficients), append([]float64(nil), mw.Coefficients...))
	tl.intercept = mw.Intercept
	tl.nIter, tl.objective, tl.converged = 0, 0, false
	if v, ok := mw.Metadata["objective"].(float64); ok {
		tl.objective = v
	}
	tl.state.SetFitted(len(mw.Coefficients), 0)
	return nil
}
