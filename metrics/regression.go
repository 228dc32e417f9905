// Package metrics は回帰モデルの評価指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// Report はまとめて計算した回帰指標
type Report struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// check は入力の長さを検証する
func check(op string, yTrue, yPred mat.Vector) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred mat.Vector) (float64, error) {
	n, err := check("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += d * d
	}
	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred mat.Vector) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred mat.Vector) (float64, error) {
	n, err := check("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred mat.Vector) (float64, error) {
	n, err := check("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		tss += (yt - yMean) * (yt - yMean)
		rss += (yt - yPred.AtVec(i)) * (yt - yPred.AtVec(i))
	}
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// Evaluate は全ての指標を計算する
func Evaluate(yTrue, yPred mat.Vector) (Report, error) {
	var r Report
	var err error
	if r.MSE, err = MSE(yTrue, yPred); err != nil {
		return Report{}, err
	}
	r.RMSE = math.Sqrt(r.MSE)
	if r.MAE, err = MAE(yTrue, yPred); err != nil {
		return Report{}, err
	}
	if r.R2, err = R2Score(yTrue, yPred); err != nil {
		return Report{}, err
	}
	return r, nil
}

// ColumnVector は n×1 行列を列ベクトルとして取り出す
func ColumnVector(op string, y mat.Matrix) (*mat.VecDense, error) {
	r, c := y.Dims()
	if r == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector (n×1 matrix)")
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, y)), nil
}
