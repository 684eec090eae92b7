package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNilResponse(t *testing.T) {
	sig := Normalize(nil)
	assert.Empty(t, sig.Labels)
	assert.Empty(t, sig.Objects)
	assert.Empty(t, sig.TextTokens)
	assert.Empty(t, sig.WebHints)
}

func TestNormalizeLabelsMergesDuplicates(t *testing.T) {
	sig := Normalize(&ImageResponse{
		LabelAnnotations: []EntityAnnotation{
			{Description: "Tank", Score: 0.7},
			{Description: "tank", Score: 0.9},
			{Description: "Sky", Score: 0.8},
			{Description: "", Score: 0.99},
		},
	})

	assert.Equal(t, []Label{
		{Text: "tank", Confidence: 0.9},
		{Text: "Sky", Confidence: 0.8},
	}, sig.Labels)
}

func TestNormalizeLabelsStableOrderOnTies(t *testing.T) {
	sig := Normalize(&ImageResponse{
		LabelAnnotations: []EntityAnnotation{
			{Description: "Alpha", Score: 0.8},
			{Description: "Beta", Score: 0.8},
		},
	})
	assert.Equal(t, "Alpha", sig.Labels[0].Text)
	assert.Equal(t, "Beta", sig.Labels[1].Text)
}

func TestNormalizeObjectsDeduplicates(t *testing.T) {
	sig := Normalize(&ImageResponse{
		LocalizedObjectAnnotations: []LocalizedObjectAnnotation{
			{Name: "Truck", Score: 0.7},
			{Name: "truck", Score: 0.6},
			{Name: "Person", Score: 0.5},
		},
	})
	assert.Equal(t, []string{"Truck", "Person"}, sig.Objects)
}

func TestNormalizeTextTokens(t *testing.T) {
	// First annotation is the full block, the rest are tokens.
	sig := Normalize(&ImageResponse{
		TextAnnotations: []EntityAnnotation{
			{Description: "TEL-42 IRGC"},
			{Description: "TEL-42"},
			{Description: " IRGC "},
			{Description: "\x00"},
		},
	})
	assert.Equal(t, []string{"TEL-42", "IRGC"}, sig.TextTokens)
}

func TestNormalizeTextBlockOnly(t *testing.T) {
	sig := Normalize(&ImageResponse{
		TextAnnotations: []EntityAnnotation{
			{Description: "TEL-42 IRGC\nunit"},
		},
	})
	assert.Equal(t, []string{"TEL-42", "IRGC", "unit"}, sig.TextTokens)
}

func TestNormalizeWebHints(t *testing.T) {
	sig := Normalize(&ImageResponse{
		WebDetection: &WebDetection{
			BestGuessLabels: []WebLabel{{Label: "iranian missile launcher"}},
			WebEntities: []WebEntity{
				{Description: "Missile", Score: 1.2},
				{Description: "Iranian missile launcher", Score: 0.8},
				{Description: "unscored entity", Score: 0},
			},
			PagesWithMatchingImages: []WebPage{
				{PageTitle: "Missile paraded in Tehran"},
			},
		},
	})
	assert.Equal(t, []string{
		"iranian missile launcher",
		"Missile",
		"Missile paraded in Tehran",
	}, sig.WebHints)
}
