package classifier

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var ErrUnrecognizedResponse = errors.New("unrecognized classifier response")

type Prediction struct {
	Class          string  `json:"class"`
	ClassLocalized string  `json:"classLocalized,omitempty"`
	Confidence     float64 `json:"confidence"`
	Percentage     string  `json:"percentage"`
}

// Result is a classifier response reduced to one shape. Predictions are
// ordered by descending confidence and Top is the first of them. Heatmap
// holds the decoded Grad-CAM overlay when the model returned one.
type Result struct {
	Disease     string       `json:"disease"`
	Top         Prediction   `json:"top"`
	Predictions []Prediction `json:"predictions"`
	Heatmap     []byte       `json:"-"`
}

type rawPrediction struct {
	Class       string   `json:"class"`
	ClassName   string   `json:"className"`
	ClassTR     string   `json:"class_tr"`
	Confidence  *float64 `json:"confidence"`
	Probability *float64 `json:"probability"`
}

type rawResponse struct {
	Success        *bool           `json:"success"`
	Error          string          `json:"error"`
	DiseaseType    string          `json:"disease_type"`
	Prediction     json.RawMessage `json:"prediction"`
	PredictionTR   string          `json:"prediction_tr"`
	Confidence     *float64        `json:"confidence"`
	Top3           []rawPrediction `json:"top_3"`
	AllPredictions []rawPrediction `json:"all_predictions"`
	GradCAM        string          `json:"gradcam"`
}

// Normalize reduces the classifier's response variants to a Result. The full
// distribution is preferred, then the top three, then a single prediction
// given either as a class name or as an object.
func Normalize(disease string, body []byte) (*Result, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}
	if raw.Success != nil && !*raw.Success {
		return nil, fmt.Errorf("%w: classifier reported failure: %s", ErrUnrecognizedResponse, raw.Error)
	}

	var preds []Prediction
	switch {
	case len(raw.AllPredictions) > 0:
		preds = convertPredictions(raw.AllPredictions)
	case len(raw.Top3) > 0:
		preds = convertPredictions(raw.Top3)
	default:
		single, ok := scalarPrediction(raw)
		if !ok {
			return nil, ErrUnrecognizedResponse
		}
		preds = []Prediction{single}
	}

	preds = lo.Filter(preds, func(p Prediction, _ int) bool { return p.Class != "" })
	if len(preds) == 0 {
		return nil, ErrUnrecognizedResponse
	}
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Confidence > preds[j].Confidence })

	if raw.DiseaseType != "" {
		disease = raw.DiseaseType
	}
	return &Result{Disease: disease, Top: preds[0], Predictions: preds, Heatmap: decodeDataURL(raw.GradCAM)}, nil
}

// decodeDataURL returns the payload of a base64 data URL. A malformed overlay
// is dropped rather than failing the prediction.
func decodeDataURL(s string) []byte {
	if s == "" {
		return nil
	}
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return data
}

func convertPredictions(raw []rawPrediction) []Prediction {
	return lo.Map(raw, func(r rawPrediction, _ int) Prediction {
		class := lo.Ternary(r.Class != "", r.Class, r.ClassName)
		if class == "" {
			class = r.ClassTR
		}
		conf := 0.0
		if r.Confidence != nil {
			conf = *r.Confidence
		} else if r.Probability != nil {
			conf = *r.Probability
		}
		return newPrediction(class, r.ClassTR, conf)
	})
}

func scalarPrediction(raw rawResponse) (Prediction, bool) {
	if len(raw.Prediction) == 0 || string(raw.Prediction) == "null" {
		return Prediction{}, false
	}

	var class string
	if err := json.Unmarshal(raw.Prediction, &class); err == nil {
		conf := 0.0
		if raw.Confidence != nil {
			conf = *raw.Confidence
		}
		return newPrediction(class, raw.PredictionTR, conf), class != ""
	}

	var obj rawPrediction
	if err := json.Unmarshal(raw.Prediction, &obj); err != nil {
		return Prediction{}, false
	}
	if obj.Confidence == nil && obj.Probability == nil {
		obj.Confidence = raw.Confidence
	}
	if obj.ClassTR == "" {
		obj.ClassTR = raw.PredictionTR
	}
	p := convertPredictions([]rawPrediction{obj})[0]
	return p, p.Class != ""
}

// newPrediction accepts confidence either as a fraction or as a percentage
// and stores it as a fraction.
func newPrediction(class, localized string, confidence float64) Prediction {
	c := decimal.NewFromFloat(confidence)
	if c.GreaterThan(decimal.NewFromInt(1)) {
		c = c.Div(decimal.NewFromInt(100))
	}
	if c.IsNegative() {
		c = decimal.Zero
	}
	f, _ := c.Float64()
	return Prediction{
		Class:          class,
		ClassLocalized: localized,
		Confidence:     f,
		Percentage:     c.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%",
	}
}
