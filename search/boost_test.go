package search

import (
	"testing"

	"github.com/poiesic/refdex/core"
	"github.com/stretchr/testify/assert"
)

func TestQueryIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "plain english",
			query: "how do I configure the gpio ports",
			want:  []string{},
		},
		{
			name:  "single identifier",
			query: "what does AFIO_MAPR control",
			want:  []string{"AFIO_MAPR"},
		},
		{
			name:  "lowercase identifier",
			query: "bits of tim2_cr1",
			want:  []string{"TIM2_CR1"},
		},
		{
			name:  "instance digits before underscore",
			query: "USART3_CR1 flow control",
			want:  []string{"USART3_CR1"},
		},
		{
			name:  "deduplicated in order",
			query: "compare GPIOA_CRL with GPIOA_CRH and GPIOA_CRL again",
			want:  []string{"GPIOA_CRL", "GPIOA_CRH"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := queryIdentifiers(tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyKeywordBoost_Regions(t *testing.T) {
	titled := &core.Candidate{
		Score: 0.5,
		Text: "REGISTER DEFINITION: AFIO_MAPR - Complete bit field specification\n" +
			"[KEY: AFIO_MAPR | offset:0x04]\n\n" +
			"AF remap register AFIO_MAPR details.",
	}
	keyed := &core.Candidate{
		Score: 0.5,
		Text: "[KEY: AFIO_MAPR | SPI1_REMAP]\n\n" +
			"Remap summary mentioning AFIO_MAPR.",
	}
	bodied := &core.Candidate{
		Score: 0.5,
		Text:  "The AFIO_MAPR register selects alternate functions.",
	}
	unrelated := &core.Candidate{
		Score: 0.5,
		Text:  "The RCC clock control register has no remap bits.",
	}

	applyKeywordBoost([]*core.Candidate{titled, keyed, bodied, unrelated}, []string{"AFIO_MAPR"})

	assert.InDelta(t, 0.70, titled.Score, 1e-6)
	assert.InDelta(t, 0.60, keyed.Score, 1e-6)
	assert.InDelta(t, 0.55, bodied.Score, 1e-6)
	assert.InDelta(t, 0.50, unrelated.Score, 1e-6)
}

func TestApplyKeywordBoost_ExactIdentifiersOnly(t *testing.T) {
	// AFIO_MAPR2 must not be credited for a query naming AFIO_MAPR.
	mapr2 := &core.Candidate{
		Score: 0.5,
		Text:  "REGISTER DEFINITION: AFIO_MAPR2 - Complete bit field specification\n\nSecond remap register.",
	}

	applyKeywordBoost([]*core.Candidate{mapr2}, []string{"AFIO_MAPR"})
	assert.InDelta(t, 0.50, mapr2.Score, 1e-6)

	applyKeywordBoost([]*core.Candidate{mapr2}, []string{"AFIO_MAPR2"})
	assert.InDelta(t, 0.70, mapr2.Score, 1e-6)
}

func TestApplyKeywordBoost_AdditiveAcrossIdentifiers(t *testing.T) {
	candidate := &core.Candidate{
		Score: 0.1,
		Text: "REGISTER DEFINITION: TIM2_CR1 - Complete bit field specification\n" +
			"[KEY: TIM2_CR1 | TIM2_CR2]\n\n" +
			"Control register detail. See also TIM2_SR for status flags.",
	}

	// Title (+0.20), key line (+0.10), body (+0.05); no cap applies.
	applyKeywordBoost([]*core.Candidate{candidate}, []string{"TIM2_CR1", "TIM2_CR2", "TIM2_SR"})
	assert.InDelta(t, 0.45, candidate.Score, 1e-6)
}

func TestApplyKeywordBoost_NoIdentifiers(t *testing.T) {
	candidate := &core.Candidate{Score: 0.33, Text: "anything"}
	applyKeywordBoost([]*core.Candidate{candidate}, nil)
	assert.InDelta(t, 0.33, candidate.Score, 1e-6)
}

func TestAnnotationRegions(t *testing.T) {
	title, key := annotationRegions(
		"REGISTER DEFINITION: AFIO_MAPR - Complete bit field specification\n" +
			"[KEY: AFIO_MAPR]\n\nbody")
	assert.Contains(t, title, "AFIO_MAPR")
	assert.Contains(t, key, "[KEY:")

	title, key = annotationRegions("plain body text")
	assert.Empty(t, title)
	assert.Empty(t, key)
}
