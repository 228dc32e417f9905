// Package preprocessing provides feature scaling applied before fitting.
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/trimlasso/core/model"
	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// StandardScaler はscikit-learn互換の標準化スケーラー
// 各特徴量から平均を引き、必要なら標準偏差で割る
type StandardScaler struct {
	state *model.StateManager

	// Mean は各特徴量の平均値（WithMean=false のとき全て0）
	Mean *mat.VecDense

	// Scale は各特徴量の標準偏差（WithStd=false のとき全て1）
	Scale *mat.VecDense

	// WithMean は平均を引くかどうか
	WithMean bool

	// WithStd は標準偏差で割るかどうか
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, false) // 中心化のみ
//	Xc, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// Fit は訓練データから平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.Mean = mat.NewVecDense(c, nil)
	s.Scale = mat.NewVecDense(c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if s.WithMean {
			s.Mean.SetVec(j, mean)
		}
		// 分散0の特徴量はスケーリングしない
		if !s.WithStd || std == 0 {
			std = 1
		}
		s.Scale.SetVec(j, std)
	}

	s.state.SetFitted(c, r)
	return nil
}

// Transform は学習した統計量でXを変換した新しい行列を返す
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	_, c := X.Dims()
	if err := s.state.RequireFeatures("StandardScaler", "Transform", c); err != nil {
		return nil, err
	}
	out := mat.DenseCopyOf(X)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean.AtVec(j)) / s.Scale.AtVec(j)
	}, out)
	return out, nil
}

// FitTransform はFitとTransformを続けて実行する
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は変換を元に戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	_, c := X.Dims()
	if err := s.state.RequireFeatures("StandardScaler", "InverseTransform", c); err != nil {
		return nil, err
	}
	out := mat.DenseCopyOf(X)
	out.Apply(func(_, j int, v float64) float64 {
		return v*s.Scale.AtVec(j) + s.Mean.AtVec(j)
	}, out)
	return out, nil
}

// Unscale maps coefficients fitted on transformed features back to the
// original feature scale.
func (s *StandardScaler) Unscale(coef mat.Vector) (*mat.VecDense, error) {
	if err := s.state.RequireFeatures("StandardScaler", "Unscale", coef.Len()); err != nil {
		return nil, err
	}
	out := mat.NewVecDense(coef.Len(), nil)
	out.DivElemVec(coef, s.Scale)
	return out, nil
}

// GetParams はパラメータを返す
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	nFeatures, _ := s.state.GetDimensions()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)", s.WithMean, s.WithStd, nFeatures)
}
