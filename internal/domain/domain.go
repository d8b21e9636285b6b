// Package domain describes the fixed set of disease domains the predictor
// serves: their identifiers, display labels, artifact naming, typed input
// records and the error taxonomy shared by every layer above it.
package domain

import (
	"strings"
	"unicode"
)

// ID identifies a disease domain. It doubles as the artifact base name.
type ID string

const (
	Diabetes   ID = "diabetes"
	Heart      ID = "heart"
	Parkinsons ID = "parkinsons"
	Kidney     ID = "kidney"
)

// ArtifactKind names one of the three artifacts backing a domain.
type ArtifactKind string

const (
	ArtifactClassifier ArtifactKind = "classifier"
	ArtifactFeatures   ArtifactKind = "features"
	ArtifactScaler     ArtifactKind = "scaler"
)

// Declaration is the static description of a domain. Adding a domain means
// adding one Declaration plus its three artifacts.
type Declaration struct {
	ID            ID
	Name          string
	PositiveLabel string
	NegativeLabel string
}

// ArtifactName returns the conventional store name for the given artifact.
func (d Declaration) ArtifactName(kind ArtifactKind) string {
	switch kind {
	case ArtifactFeatures:
		return string(d.ID) + "_features"
	case ArtifactScaler:
		return string(d.ID) + "_scaler"
	default:
		return string(d.ID)
	}
}

var catalogue = []Declaration{
	{ID: Diabetes, Name: "Diabetes", PositiveLabel: "Diabetes Detected", NegativeLabel: "No Diabetes"},
	{ID: Heart, Name: "Heart Disease", PositiveLabel: "Heart Disease Detected", NegativeLabel: "No Heart Disease"},
	{ID: Parkinsons, Name: "Parkinson's", PositiveLabel: "Parkinson's Detected", NegativeLabel: "No Parkinson's"},
	{ID: Kidney, Name: "Kidney Disease", PositiveLabel: "Chronic Kidney Disease Detected", NegativeLabel: "No Kidney Disease"},
}

// All returns every registered domain in catalogue order.
func All() []Declaration {
	out := make([]Declaration, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup returns the declaration for id.
func Lookup(id ID) (Declaration, bool) {
	for _, d := range catalogue {
		if d.ID == id {
			return d, true
		}
	}
	return Declaration{}, false
}

// Parse accepts either an identifier ("heart") or a display name
// ("Heart Disease", "parkinson's"), ignoring case, spaces and punctuation.
func Parse(s string) (ID, error) {
	key := fold(s)
	if key != "" {
		for _, d := range catalogue {
			if key == fold(string(d.ID)) || key == fold(d.Name) {
				return d.ID, nil
			}
		}
	}
	return "", &Error{Op: "parse domain", Kind: KindUnknownDomain, Domain: ID(s)}
}

func fold(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
