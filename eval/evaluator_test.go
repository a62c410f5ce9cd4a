package eval

import (
	"testing"

	"github.com/poiesic/answerit/core"
	"github.com/stretchr/testify/assert"
)

func grounded(text string, sim float64) *core.ScoredCandidate {
	return &core.ScoredCandidate{
		Chunk:      &core.Chunk{Text: text},
		Similarity: sim,
	}
}

func TestEvaluateAnswer(t *testing.T) {
	t.Run("clean grounded answer raises no flags", func(t *testing.T) {
		passages := []*core.ScoredCandidate{
			grounded("Billing invoices are issued monthly. Invoices include every workspace seat.", 0.8),
		}
		flags := EvaluateAnswer(
			"how does billing work",
			"Invoices are issued monthly and cover every workspace seat [1].",
			passages,
		)
		assert.Empty(t, flags)
	})

	t.Run("empty passages flag missing context", func(t *testing.T) {
		flags := EvaluateAnswer("anything", "some answer", nil)
		assert.Contains(t, flags, FlagNoContext)
	})

	t.Run("refusal phrases are detected", func(t *testing.T) {
		passages := []*core.ScoredCandidate{grounded("unrelated text", 0.5)}
		flags := EvaluateAnswer(
			"how do webhooks retry",
			"I could not find this information in the Clearpath documentation.",
			passages,
		)
		assert.Contains(t, flags, FlagRefusal)
		assert.NotContains(t, flags, FlagUnverifiedFeatureClaim)
	})

	t.Run("feature claim without keyword overlap is unverified", func(t *testing.T) {
		passages := []*core.ScoredCandidate{
			grounded("Exports run nightly and land in your storage bucket.", 0.7),
		}
		flags := EvaluateAnswer(
			"does the enterprise plan include SSO",
			"Yes, quantum teleportation synchronizes identities instantly.",
			passages,
		)
		assert.Contains(t, flags, FlagUnverifiedFeatureClaim)
	})

	t.Run("feature claim with only weak passages is unverified", func(t *testing.T) {
		passages := []*core.ScoredCandidate{
			grounded("SAML single sign-on configuration requires a verified domain.", 0.1),
		}
		flags := EvaluateAnswer(
			"how do I configure SSO",
			"Single sign-on configuration requires a verified domain first.",
			passages,
		)
		assert.Contains(t, flags, FlagUnverifiedFeatureClaim)
	})

	t.Run("non-feature query skips the grounding check", func(t *testing.T) {
		passages := []*core.ScoredCandidate{
			grounded("Exports run nightly.", 0.7),
		}
		flags := EvaluateAnswer(
			"when do exports happen",
			"Totally unrelated words with zero overlap whatsoever.",
			passages,
		)
		assert.NotContains(t, flags, FlagUnverifiedFeatureClaim)
	})

	t.Run("system leakage is detected", func(t *testing.T) {
		passages := []*core.ScoredCandidate{grounded("text", 0.5)}
		flags := EvaluateAnswer(
			"hello",
			"My System Prompt says I must refuse that.",
			passages,
		)
		assert.Contains(t, flags, FlagSystemLeakage)
	})
}

func TestConfidence(t *testing.T) {
	t.Run("base follows average similarity", func(t *testing.T) {
		assert.InDelta(t, 0.55, Confidence("plain answer", 0.55, nil), 1e-9)
	})

	t.Run("citations add a bonus", func(t *testing.T) {
		assert.InDelta(t, 0.75, Confidence("cited answer [1]", 0.55, nil), 1e-9)
	})

	t.Run("no context zeroes confidence", func(t *testing.T) {
		assert.Equal(t, 0.0, Confidence("answer [1]", 0.9, []string{FlagNoContext}))
	})

	t.Run("refusal caps confidence", func(t *testing.T) {
		assert.InDelta(t, 0.2, Confidence("I could not find this", 0.9, []string{FlagRefusal}), 1e-9)
	})

	t.Run("unverified claim penalty", func(t *testing.T) {
		assert.InDelta(t, 0.3, Confidence("answer", 0.6, []string{FlagUnverifiedFeatureClaim}), 1e-9)
	})

	t.Run("leakage penalty floors at zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Confidence("answer", 0.3, []string{FlagSystemLeakage}))
	})

	t.Run("result is clamped to one", func(t *testing.T) {
		assert.Equal(t, 1.0, Confidence("answer [2]", 0.95, nil))
	})
}

func TestExtractKeywords(t *testing.T) {
	t.Run("stopwords and short words are dropped", func(t *testing.T) {
		keywords := extractKeywords("The billing page shows the invoice for your workspace.")
		assert.True(t, keywords["billing"])
		assert.True(t, keywords["invoice"])
		assert.True(t, keywords["workspace"])
		assert.False(t, keywords["the"])
		assert.False(t, keywords["for"])
	})

	t.Run("punctuation does not split terms apart", func(t *testing.T) {
		keywords := extractKeywords("Webhooks, webhooks... WEBHOOKS!")
		assert.True(t, keywords["webhooks"])
		assert.Len(t, keywords, 1)
	})
}
