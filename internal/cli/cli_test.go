package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disease-predictor/internal/domain"
)

var heartFeatures = []string{"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg", "thalach", "exang", "oldpeak", "slope", "ca", "thal"}

// isolate clears config from the environment and moves to an empty working
// directory so no .env file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "ARTIFACT_DIR", "ARTIFACT_BACKEND", "BOLT_PATH", "LISTEN_PORT",
		"REQUEST_TIMEOUT", "CLASSIFIER_TIMEOUT", "PRELOAD", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// heartArtifacts writes a heart model that is positive iff age > 50.
func heartArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	n := len(heartFeatures)
	mean := make([]float64, n)
	scale := make([]float64, n)
	coef := make([]float64, n)
	for i := range scale {
		scale[i] = 1
	}
	coef[0] = 1

	writeJSON(t, filepath.Join(dir, "heart_features.json"), heartFeatures)
	writeJSON(t, filepath.Join(dir, "heart_scaler.json"), map[string]interface{}{"mean": mean, "scale": scale})
	writeJSON(t, filepath.Join(dir, "heart.json"), map[string]interface{}{"type": "logistic_regression", "coef": coef, "intercept": -50})
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseAssignments(t *testing.T) {
	raw, err := parseAssignments([]string{"age=45", "chol= 240 ", "MDVP:Fo(Hz)=119.99", "note="})
	require.NoError(t, err)
	assert.Equal(t, domain.RawInput{
		"age":         "45",
		"chol":        " 240 ",
		"MDVP:Fo(Hz)": "119.99",
		"note":        "",
	}, raw)

	raw, err = parseAssignments(nil)
	require.NoError(t, err)
	assert.Empty(t, raw)

	for _, bad := range [][]string{{"age"}, {"=45"}, {"age=1", "age=2"}} {
		_, err := parseAssignments(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestPredictCommand(t *testing.T) {
	isolate(t)
	dir := heartArtifacts(t)

	out, err := run(t, "predict", "heart", "--artifacts", dir, "age=52", "chol=240")
	require.NoError(t, err)
	assert.Contains(t, out, "Heart Disease: Heart Disease Detected")
	assert.Contains(t, out, "positive 88.08%")

	out, err = run(t, "predict", "Heart Disease", "--artifacts", dir, "age=40")
	require.NoError(t, err)
	assert.Contains(t, out, "No Heart Disease")
}

func TestPredictCommand_JSON(t *testing.T) {
	isolate(t)
	dir := heartArtifacts(t)

	out, err := run(t, "predict", "heart", "--artifacts", dir, "--json", "age=60")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "heart", body["domain"])
	assert.Equal(t, true, body["predicted_class"])
	assert.Equal(t, "Heart Disease Detected", body["label"])
}

func TestPredictCommand_Record(t *testing.T) {
	isolate(t)
	dir := heartArtifacts(t)

	path := filepath.Join(t.TempDir(), "patient.json")
	writeJSON(t, path, map[string]interface{}{
		"age": 45, "sex": 1, "cp": 2, "trestbps": 120, "chol": 240, "fbs": 0, "restecg": 1,
		"thalach": 150, "exang": 0, "oldpeak": 1.0, "slope": 1, "ca": 0, "thal": 2,
	})

	out, err := run(t, "predict", "heart", "--artifacts", dir, "--record", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No Heart Disease")

	writeJSON(t, path, map[string]interface{}{"age": 45, "cp": 9})
	_, err = run(t, "predict", "heart", "--artifacts", dir, "--record", path)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindMalformedInput))

	_, err = run(t, "predict", "heart", "--artifacts", dir, "--record", path, "age=50")
	assert.Error(t, err)
}

func TestPredictCommand_Errors(t *testing.T) {
	isolate(t)
	dir := heartArtifacts(t)

	_, err := run(t, "predict", "cancer", "--artifacts", dir)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUnknownDomain))

	_, err = run(t, "predict", "heart", "--artifacts", dir, "chol=abc")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindMalformedInput))

	_, err = run(t, "predict", "kidney", "--artifacts", dir)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindArtifactNotFound))

	_, err = run(t, "predict")
	assert.Error(t, err)
}

func TestDomainsCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "domains")
	require.NoError(t, err)
	for _, d := range domain.All() {
		assert.Contains(t, out, string(d.ID))
		assert.Contains(t, out, d.Name)
	}
}

func TestDomainsCommand_Features(t *testing.T) {
	isolate(t)
	dir := heartArtifacts(t)

	out, err := run(t, "domains", "--features", "--artifacts", dir)
	require.NoError(t, err)
	assert.Contains(t, out, strings.Join(heartFeatures, ", "))
	assert.Contains(t, out, "unavailable")
}

func TestImportThenPredictFromBolt(t *testing.T) {
	isolate(t)
	dir := heartArtifacts(t)
	boltPath := filepath.Join(t.TempDir(), "db")
	t.Setenv("BOLT_PATH", boltPath)

	out, err := run(t, "import", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "heart_features")
	assert.Contains(t, out, "imported 3 artifacts")

	out, err = run(t, "predict", "heart", "--backend", "bolt", "age=70")
	require.NoError(t, err)
	assert.Contains(t, out, "Heart Disease Detected")
}

func TestInvalidBackendFlag(t *testing.T) {
	isolate(t)

	_, err := run(t, "predict", "heart", "--backend", "s3")
	assert.Error(t, err)
}
