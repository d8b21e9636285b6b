package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"diabetes", Diabetes},
		{"Diabetes", Diabetes},
		{"Heart Disease", Heart},
		{"heart", Heart},
		{"Parkinson's", Parkinsons},
		{"parkinsons", Parkinsons},
		{"  Kidney Disease ", Kidney},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	for _, in := range []string{"Cancer", "", "   ", "diabetes2"} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.True(t, IsKind(err, KindUnknownDomain), "input %q: %v", in, err)
	}
}

func TestArtifactName(t *testing.T) {
	d, ok := Lookup(Kidney)
	require.True(t, ok)

	assert.Equal(t, "kidney", d.ArtifactName(ArtifactClassifier))
	assert.Equal(t, "kidney_features", d.ArtifactName(ArtifactFeatures))
	assert.Equal(t, "kidney_scaler", d.ArtifactName(ArtifactScaler))
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	require.Len(t, all, 4)

	all[0].PositiveLabel = "mutated"
	d, _ := Lookup(all[0].ID)
	assert.NotEqual(t, "mutated", d.PositiveLabel)
}

func TestErrorWrapUnwrap(t *testing.T) {
	root := errors.New("boom")
	err := &Error{
		Op:       "load artifact",
		Kind:     KindArtifactNotFound,
		Domain:   Heart,
		Artifact: ArtifactScaler,
		Err:      root,
	}

	assert.True(t, errors.Is(err, root))
	assert.Equal(t, KindArtifactNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "domain=heart")
	assert.Contains(t, err.Error(), "artifact=scaler")

	wrapped := errors.Join(errors.New("outer"), err)
	assert.True(t, IsKind(wrapped, KindArtifactNotFound))
	assert.Equal(t, ErrorKind(""), KindOf(root))

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}
