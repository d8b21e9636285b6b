package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RawInput maps field names to raw values. Values are numbers or scalars that
// can be coerced to numbers; keys follow the domain's feature manifest.
type RawInput map[string]any

// Record is a typed, per-domain input. Each implementation enumerates the
// exact fields of its domain and their accepted ranges.
type Record interface {
	Domain() ID
	Raw() RawInput
}

// DiabetesInput holds the diabetes screening fields.
type DiabetesInput struct {
	Sex                      string  `json:"Sex,omitempty" validate:"omitempty,oneof=Male Female Other"`
	Age                      float64 `json:"Age" validate:"min=20,max=80"`
	BMI                      float64 `json:"BMI" validate:"min=10,max=50"`
	Pregnancies              float64 `json:"Pregnancies" validate:"min=0,max=20"`
	Glucose                  float64 `json:"Glucose" validate:"min=40,max=200"`
	Insulin                  float64 `json:"Insulin" validate:"min=15,max=276"`
	BloodPressure            float64 `json:"BloodPressure" validate:"min=40,max=140"`
	DiabetesPedigreeFunction float64 `json:"DiabetesPedigreeFunction" validate:"min=0,max=2.5"`
	SkinThickness            float64 `json:"SkinThickness" validate:"min=5,max=60"`
}

func (DiabetesInput) Domain() ID { return Diabetes }

// Raw reports Pregnancies as 0 unless Sex is Female.
func (in DiabetesInput) Raw() RawInput {
	pregnancies := 0.0
	if in.Sex == "Female" {
		pregnancies = in.Pregnancies
	}
	return RawInput{
		"Age":                      in.Age,
		"BMI":                      in.BMI,
		"Pregnancies":              pregnancies,
		"Glucose":                  in.Glucose,
		"Insulin":                  in.Insulin,
		"BloodPressure":            in.BloodPressure,
		"DiabetesPedigreeFunction": in.DiabetesPedigreeFunction,
		"SkinThickness":            in.SkinThickness,
	}
}

// HeartInput holds the Cleveland heart disease fields. Categorical fields are
// integer codes.
type HeartInput struct {
	Age      float64 `json:"age" validate:"min=18,max=100"`
	Sex      int     `json:"sex" validate:"oneof=0 1"`
	CP       int     `json:"cp" validate:"oneof=0 1 2 3"`
	Trestbps float64 `json:"trestbps" validate:"min=80,max=200"`
	Chol     float64 `json:"chol" validate:"min=100,max=600"`
	FBS      int     `json:"fbs" validate:"oneof=0 1"`
	RestECG  int     `json:"restecg" validate:"oneof=0 1 2"`
	Thalach  float64 `json:"thalach" validate:"min=60,max=210"`
	Exang    int     `json:"exang" validate:"oneof=0 1"`
	Oldpeak  float64 `json:"oldpeak" validate:"min=0,max=6"`
	Slope    int     `json:"slope" validate:"oneof=0 1 2"`
	CA       int     `json:"ca" validate:"oneof=0 1 2 3"`
	Thal     int     `json:"thal" validate:"oneof=0 1 2"`
}

func (HeartInput) Domain() ID { return Heart }

func (in HeartInput) Raw() RawInput {
	return RawInput{
		"age":      in.Age,
		"sex":      in.Sex,
		"cp":       in.CP,
		"trestbps": in.Trestbps,
		"chol":     in.Chol,
		"fbs":      in.FBS,
		"restecg":  in.RestECG,
		"thalach":  in.Thalach,
		"exang":    in.Exang,
		"oldpeak":  in.Oldpeak,
		"slope":    in.Slope,
		"ca":       in.CA,
		"thal":     in.Thal,
	}
}

// ParkinsonsInput holds the voice measurement fields. The manifest uses the
// MDVP column names of the source dataset, which Raw maps to.
type ParkinsonsInput struct {
	Fo      float64 `json:"fo" validate:"min=100,max=400"`
	Fhi     float64 `json:"fhi" validate:"min=150,max=500"`
	Flo     float64 `json:"flo" validate:"min=50,max=200"`
	Jitter  float64 `json:"jitter" validate:"min=0,max=1"`
	Shimmer float64 `json:"shimmer" validate:"min=0,max=1"`
	RPDE    float64 `json:"rpde" validate:"min=0,max=1"`
	DFA     float64 `json:"dfa" validate:"min=0,max=1"`
	Spread1 float64 `json:"spread1" validate:"min=-10,max=0"`
	Spread2 float64 `json:"spread2" validate:"min=-5,max=5"`
	D2      float64 `json:"d2" validate:"min=1,max=5"`
	PPE     float64 `json:"PPE" validate:"min=0,max=1"`
}

func (ParkinsonsInput) Domain() ID { return Parkinsons }

func (in ParkinsonsInput) Raw() RawInput {
	return RawInput{
		"MDVP:Fo(Hz)":    in.Fo,
		"MDVP:Fhi(Hz)":   in.Fhi,
		"MDVP:Flo(Hz)":   in.Flo,
		"MDVP:Jitter(%)": in.Jitter,
		"MDVP:Shimmer":   in.Shimmer,
		"RPDE":           in.RPDE,
		"DFA":            in.DFA,
		"spread1":        in.Spread1,
		"spread2":        in.Spread2,
		"D2":             in.D2,
		"PPE":            in.PPE,
	}
}

// KidneyInput holds the chronic kidney disease lab panel.
type KidneyInput struct {
	Age  float64 `json:"age" validate:"min=20,max=90"`
	BP   float64 `json:"bp" validate:"min=50,max=180"`
	SG   float64 `json:"sg" validate:"min=1,max=1.05"`
	AL   float64 `json:"al" validate:"min=0,max=5"`
	SU   float64 `json:"su" validate:"min=0,max=5"`
	BGR  float64 `json:"bgr" validate:"min=70,max=400"`
	BU   float64 `json:"bu" validate:"min=10,max=150"`
	SC   float64 `json:"sc" validate:"min=0.1,max=15"`
	Sod  float64 `json:"sod" validate:"min=100,max=160"`
	Pot  float64 `json:"pot" validate:"min=2,max=7"`
	Hemo float64 `json:"hemo" validate:"min=3,max=17"`
	PCV  float64 `json:"pcv" validate:"min=20,max=60"`
	WBCC float64 `json:"wbcc" validate:"min=2000,max=20000"`
	RBCC float64 `json:"rbcc" validate:"min=2,max=7"`
}

func (KidneyInput) Domain() ID { return Kidney }

func (in KidneyInput) Raw() RawInput {
	return RawInput{
		"age":  in.Age,
		"bp":   in.BP,
		"sg":   in.SG,
		"al":   in.AL,
		"su":   in.SU,
		"bgr":  in.BGR,
		"bu":   in.BU,
		"sc":   in.SC,
		"sod":  in.Sod,
		"pot":  in.Pot,
		"hemo": in.Hemo,
		"pcv":  in.PCV,
		"wbcc": in.WBCC,
		"rbcc": in.RBCC,
	}
}

// NewRecord returns an empty record for id, ready to be decoded into.
func NewRecord(id ID) (Record, error) {
	switch id {
	case Diabetes:
		return &DiabetesInput{}, nil
	case Heart:
		return &HeartInput{}, nil
	case Parkinsons:
		return &ParkinsonsInput{}, nil
	case Kidney:
		return &KidneyInput{}, nil
	}
	return nil, &Error{Op: "new record", Kind: KindUnknownDomain, Domain: id}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks rec against its field ranges. The first violation is
// reported as a malformed input naming the field.
func Validate(rec Record) error {
	if rec == nil {
		return &Error{Op: "validate record", Kind: KindMalformedInput, Err: errors.New("record is nil")}
	}

	err := validate.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &Error{
			Op:     "validate record",
			Kind:   KindMalformedInput,
			Domain: rec.Domain(),
			Field:  fe.Field(),
			Err:    fmt.Errorf("value %v fails %s=%s", fe.Value(), fe.Tag(), fe.Param()),
		}
	}
	return &Error{Op: "validate record", Kind: KindMalformedInput, Domain: rec.Domain(), Err: err}
}
