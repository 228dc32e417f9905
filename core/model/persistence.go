package model

import (
	"io"
	"os"

	"github.com/YuminosukeSato/trimlasso/pkg/errors"
)

// WriteWeights はModelWeightsをJSONとしてio.Writerに書き出す
func WriteWeights(w io.Writer, mw *ModelWeights) error {
	if err := mw.Validate(); err != nil {
		return err
	}
	data, err := mw.ToJSON()
	if err != nil {
		return errors.Wrap(err, "encode model weights")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write model weights")
	}
	return nil
}

// ReadWeights はio.ReaderからModelWeightsを読み込み、妥当性を検証する
func ReadWeights(r io.Reader) (*ModelWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read model weights")
	}
	mw := &ModelWeights{}
	if err := mw.FromJSON(data); err != nil {
		return nil, err
	}
	return mw, nil
}

// SaveWeights は学習済みモデルの重みをファイルに保存する
//
// 使用例:
//
//	tl := linear.NewTrimmedLasso(linear.WithK(5))
//	// ... モデルの学習 ...
//	err := model.SaveWeights(tl, "trimmed_lasso.json")
func SaveWeights(m WeightExporter, filename string) error {
	mw, err := m.ExportWeights()
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	defer file.Close()
	return WriteWeights(file, mw)
}

// LoadWeights はファイルからModelWeightsを読み込む
func LoadWeights(filename string) (*ModelWeights, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	defer file.Close()
	return ReadWeights(file)
}
