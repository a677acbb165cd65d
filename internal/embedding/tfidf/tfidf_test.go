package tfidf_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/embedding/tfidf"
)

func TestEmbedder_PrepareThenEmbed(t *testing.T) {
	e := tfidf.NewEmbedder()
	require.Error(t, func() error { _, err := e.Embed("x"); return err }(),
		"embedding before prepare must fail")

	corpus := []string{
		"invoices are issued monthly",
		"payments settle within days",
		"refunds reference payments",
	}
	require.NoError(t, e.Prepare(corpus))
	require.Greater(t, e.Dimension(), 0)

	vec, err := e.Embed("payments and refunds")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9, "vectors are L2-normalized")
}

func TestEmbedder_StopwordsProduceZeroVector(t *testing.T) {
	e := tfidf.NewEmbedder()
	require.NoError(t, e.Prepare([]string{"alpha beta", "beta gamma"}))

	// English and Spanish stopwords alike contribute nothing.
	vec, err := e.Embed("the and el la de")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedder_EmptyCorpusRejected(t *testing.T) {
	e := tfidf.NewEmbedder()
	assert.Error(t, e.Prepare(nil))
}
