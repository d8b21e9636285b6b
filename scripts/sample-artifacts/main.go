// Command sample-artifacts writes demonstration artifacts for every domain:
// a feature manifest, a standard scaler fitted to published dataset
// statistics and a hand-set logistic regression. They exercise the service
// end to end; they are not clinically meaningful models.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"disease-predictor/internal/domain"
	"disease-predictor/internal/storage"
)

type column struct {
	name  string
	mean  float64
	scale float64
	coef  float64
}

type sample struct {
	columns   []column
	intercept float64
}

var samples = map[domain.ID]sample{
	domain.Diabetes: {intercept: -0.85, columns: []column{
		{"Age", 33.2, 11.8, 0.2},
		{"BMI", 32.0, 7.9, 0.7},
		{"Pregnancies", 3.8, 3.4, 0.4},
		{"Glucose", 120.9, 32.0, 1.1},
		{"Insulin", 79.8, 115.2, -0.1},
		{"BloodPressure", 69.1, 19.4, -0.2},
		{"DiabetesPedigreeFunction", 0.47, 0.33, 0.3},
		{"SkinThickness", 20.5, 16.0, 0.0},
	}},
	domain.Heart: {intercept: 0.2, columns: []column{
		{"age", 54.4, 9.1, -0.1},
		{"sex", 0.68, 0.47, -0.8},
		{"cp", 0.97, 1.03, 0.9},
		{"trestbps", 131.6, 17.5, -0.3},
		{"chol", 246.3, 51.8, -0.2},
		{"fbs", 0.15, 0.36, 0.05},
		{"restecg", 0.53, 0.53, 0.2},
		{"thalach", 149.6, 22.9, 0.5},
		{"exang", 0.33, 0.47, -0.5},
		{"oldpeak", 1.04, 1.16, -0.6},
		{"slope", 1.4, 0.62, 0.4},
		{"ca", 0.73, 1.02, -0.8},
		{"thal", 2.31, 0.61, -0.6},
	}},
	domain.Parkinsons: {intercept: 1.3, columns: []column{
		{"MDVP:Fo(Hz)", 154.2, 41.3, -0.4},
		{"MDVP:Fhi(Hz)", 197.1, 91.5, -0.1},
		{"MDVP:Flo(Hz)", 116.3, 43.5, -0.3},
		{"MDVP:Jitter(%)", 0.0062, 0.0048, 0.2},
		{"MDVP:Shimmer", 0.0297, 0.0189, 0.4},
		{"RPDE", 0.4985, 0.1039, 0.2},
		{"DFA", 0.7181, 0.0553, 0.1},
		{"spread1", -5.684, 1.09, 0.9},
		{"spread2", 0.2265, 0.0834, 0.5},
		{"D2", 2.382, 0.383, 0.3},
		{"PPE", 0.2066, 0.0901, 0.8},
	}},
	domain.Kidney: {intercept: 0.5, columns: []column{
		{"age", 51.5, 17.2, 0.1},
		{"bp", 76.5, 13.7, 0.3},
		{"sg", 1.017, 0.0057, -1.2},
		{"al", 1.0, 1.35, 1.1},
		{"su", 0.45, 1.1, 0.5},
		{"bgr", 148.0, 79.3, 0.6},
		{"bu", 57.4, 50.5, 0.4},
		{"sc", 3.07, 5.7, 0.9},
		{"sod", 137.5, 10.4, -0.3},
		{"pot", 4.63, 3.2, 0.1},
		{"hemo", 12.5, 2.9, -1.3},
		{"pcv", 38.9, 8.99, -1.0},
		{"wbcc", 8406, 2945, 0.2},
		{"rbcc", 4.7, 1.0, -0.7},
	}},
}

type scalerDoc struct {
	Type  string    `json:"type"`
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type classifierDoc struct {
	Type      string    `json:"type"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func main() {
	var (
		outDir   = flag.String("out", "models", "Directory to write JSON artifacts to")
		boltPath = flag.String("bolt", "", "Also store the artifacts in the Bolt database under this path")
	)
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	var store *storage.Store
	if *boltPath != "" {
		s, err := storage.New(*boltPath)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer s.Close()
		store = s
	}

	for _, decl := range domain.All() {
		docs := artifacts(samples[decl.ID])
		for kind, doc := range docs {
			name := decl.ArtifactName(kind)
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				log.Fatalf("Failed to encode %s: %v", name, err)
			}
			data = append(data, '\n')

			if err := os.WriteFile(filepath.Join(*outDir, name+".json"), data, 0o644); err != nil {
				log.Fatalf("Failed to write %s: %v", name, err)
			}
			if store != nil {
				if err := store.Put(name, data); err != nil {
					log.Fatalf("Failed to store %s: %v", name, err)
				}
			}
		}
		fmt.Printf("✓ %s: %d features\n", decl.Name, len(samples[decl.ID].columns))
	}
}

func artifacts(s sample) map[domain.ArtifactKind]interface{} {
	features := make([]string, len(s.columns))
	scaler := scalerDoc{Type: "standard"}
	classifier := classifierDoc{Type: "logistic_regression", Intercept: s.intercept}
	for i, c := range s.columns {
		features[i] = c.name
		scaler.Mean = append(scaler.Mean, c.mean)
		scaler.Scale = append(scaler.Scale, c.scale)
		classifier.Coef = append(classifier.Coef, c.coef)
	}
	return map[domain.ArtifactKind]interface{}{
		domain.ArtifactFeatures:   features,
		domain.ArtifactScaler:     scaler,
		domain.ArtifactClassifier: classifier,
	}
}
