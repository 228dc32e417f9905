// Package model defines the estimator contracts shared by the models in this
// module and the state they carry between Fit and Predict.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// LinearModel は線形モデルのインターフェース
type LinearModel interface {
	Regressor
	// Coef は学習された係数を返す
	Coef() []float64
	// Intercept は学習された切片を返す
	Intercept() float64
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// WeightExporter is implemented by models whose fitted state can be
// serialized as ModelWeights.
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
}
