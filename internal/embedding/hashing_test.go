package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestHashingEmbedder_UnitNormAndDeterminism(t *testing.T) {
	e := NewHashingEmbedder(64)
	texts := []string{"Literature review of graph neural networks", "Quarterly revenue grew"}

	first, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for _, v := range first {
		require.Len(t, v, 64)
		assert.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-5)
	}
}

func TestHashingEmbedder_SharedTermsScoreHigher(t *testing.T) {
	e := NewHashingEmbedder(256)
	vecs, err := e.Embed(context.Background(), []string{
		"travel planning for a group of friends",
		"planning a trip with friends: travel tips",
		"protein synthesis in ribosomes",
	})
	require.NoError(t, err)

	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]))
}

func TestHashingEmbedder_StopwordsOnlyIsZeroVector(t *testing.T) {
	e := NewHashingEmbedder(16)
	vecs, err := e.Embed(context.Background(), []string{"the and of to"})
	require.NoError(t, err)
	assert.Zero(t, dot(vecs[0], vecs[0]))
}

func TestHashingEmbedder_Defaults(t *testing.T) {
	e := NewHashingEmbedder(0)
	assert.Equal(t, DefaultHashingDim, e.Dimension())
	assert.Equal(t, "hashing", e.Name())
	assert.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), []string{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ProviderConfig{Provider: "hashing", HashingDim: 32}, quietLog())
	require.NoError(t, err)
	assert.Equal(t, 32, p.Dimension())

	p, err = NewProvider(ProviderConfig{Provider: "openai", BaseURL: "http://localhost:11434/v1"}, quietLog())
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(ProviderConfig{Provider: "word2vec"}, quietLog())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, p)
}
