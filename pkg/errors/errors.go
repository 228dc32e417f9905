// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// ソルバーの失敗、設定ミス、収束しなかった反復などを構造化されたエラーとして表現します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("trimlasso-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// ConvergenceWarningなどの警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nilを渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning は反復アルゴリズムが最大反復回数内に収束しなかった場合の警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or rel_tol.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// BindingWarning はbig-M定式化の最適解で |beta_i| が bigM に張り付いている場合の警告です。
// この場合の解は信頼できないため、既定では結果を返さずにこの警告をエラーとして返します。
type BindingWarning struct {
	BigM    float64
	Indices []int     // 張り付いている係数のインデックス
	Values  []float64 // 該当する係数の値
}

func (w *BindingWarning) Error() string {
	return fmt.Sprintf("bigM=%g is binding at the optimum for %d coefficient(s) %v; increase bigM or disable the binding check",
		w.BigM, len(w.Indices), w.Indices)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *BindingWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("big_m", w.BigM).
		Ints("indices", w.Indices).
		Floats64("values", w.Values).
		Str("type", "BindingWarning")
}

// NewBindingWarning は新しいBindingWarningを作成し、スタックトレースを付与します。
func NewBindingWarning(bigM float64, indices []int, values []float64) error {
	return errors.WithStack(&BindingWarning{BigM: bigM, Indices: indices, Values: values})
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` などを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("trimlasso: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
// 宣言された特徴量数 p と計画行列の列数が一致しない場合もこのエラーになります。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("trimlasso: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
// k, mu, lambda, sigma, bigM などの設定ミスはこのエラーで報告されます。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("trimlasso: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("trimlasso: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は推定器に関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trimlasso: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("trimlasso: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// SolverErrorKind は外部ソルバーの失敗の種類です。
type SolverErrorKind string

const (
	// SolverInfeasible はモデルが実行不可能であることを示します。
	SolverInfeasible SolverErrorKind = "infeasible"
	// SolverUnbounded はモデルが非有界であることを示します。
	SolverUnbounded SolverErrorKind = "unbounded"
	// SolverUnsupported はバックエンドがモデルの機能（SOS1、MIQPなど）をサポートしないことを示します。
	SolverUnsupported SolverErrorKind = "unsupported"
	// SolverLimit は時間・反復回数の上限に達したことを示します。
	SolverLimit SolverErrorKind = "limit"
	// SolverFailed はその他の失敗です。
	SolverFailed SolverErrorKind = "failed"
)

// SolverError は外部ソルバーの呼び出しが失敗した場合のエラーです。
// コアは再試行や自動的なダウングレードを行わず、このエラーをそのまま呼び出し元に返します。
type SolverError struct {
	Backend string
	Kind    SolverErrorKind
	Err     error
}

func (e *SolverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trimlasso: solver %s: %s: %v", e.Backend, e.Kind, e.Err)
	}
	return fmt.Sprintf("trimlasso: solver %s: %s", e.Backend, e.Kind)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SolverError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("backend", e.Backend).
		Str("kind", string(e.Kind)).
		Str("type", "SolverError")
	if e.Err != nil {
		event.Str("cause", e.Err.Error())
	}
}

// NewSolverError は新しいSolverErrorを作成し、スタックトレースを付与します。
func NewSolverError(backend string, kind SolverErrorKind, err error) error {
	return errors.WithStack(&SolverError{Backend: backend, Kind: kind, Err: err})
}

// IsSolverError はerrが指定した種類のSolverErrorかどうかを判定します。
func IsSolverError(err error, kind SolverErrorKind) bool {
	var se *SolverError
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == kind
}

// InvariantError は内部整合性の違反（選択された座標数が k と一致しないなど）を表します。
// 回復可能なエラーではなく、panicの値として使用されます。
type InvariantError struct {
	Op       string
	Expected int
	Got      int
	Detail   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("trimlasso: %s: internal invariant violated: expected %d, got %d: %s", e.Op, e.Expected, e.Got, e.Detail)
}

// NewInvariantError は新しいInvariantErrorを作成します。
func NewInvariantError(op string, expected, got int, detail string) *InvariantError {
	return &InvariantError{Op: op, Expected: expected, Got: got, Detail: detail}
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	数値計算エラー
//
// ===========================================================================

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf などを検出します。
type NumericalInstabilityError struct {
	Operation string                 // 発生した操作（例: "prox_step", "admm_dual_update"）
	Values    []float64              // 問題のある値
	Context   map[string]interface{} // デバッグ用の追加コンテキスト情報
	Iteration int                    // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("trimlasso: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
		Context:   make(map[string]interface{}),
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
