package eval

import (
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/answerit/core"
)

// Quality flags raised by EvaluateAnswer.
const (
	FlagNoContext              = "no_context"
	FlagRefusal                = "refusal"
	FlagUnverifiedFeatureClaim = "unverified_feature_claim"
	FlagSystemLeakage          = "system_leakage_detected"
)

// refusalPhrases detect the model declining to answer.
var refusalPhrases = []string{
	"i don't know", "i do not know", "i could not find",
	"i am sorry", "i'm sorry", "not mentioned in the provided",
	"cannot answer", "does not contain information",
	"not found in the clearpath", "no information available",
}

// featureDomainTerms: queries naming one of these get the keyword-grounding
// check, since feature claims are where ungrounded answers do real damage.
var featureDomainTerms = []string{
	"workspace", "billing", "permissions", "integration", "api",
	"plan", "enterprise", "sso", "oauth", "webhook", "pricing",
	"subscription", "admin", "role", "access",
}

// leakagePatterns catch the model echoing internal instructions.
var leakagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)system\s*prompt`),
	regexp.MustCompile(`(?i)hidden\s*polic`),
	regexp.MustCompile(`(?i)ignore\s*previous`),
	regexp.MustCompile(`(?i)developer\s*mode`),
	regexp.MustCompile(`(?i)internal\s*reasoning`),
	regexp.MustCompile(`(?i)untrusted\s*data`),
}

var citationPattern = regexp.MustCompile(`\[\d+\]`)

// groundingSimilarity: passages below this dense similarity are too weak to
// verify a feature claim against.
const groundingSimilarity = 0.3

// EvaluateAnswer inspects a generated answer for quality and grounding
// problems and returns the raised flags, empty when the answer looks sound.
//
// Checks: missing context, explicit refusals, feature claims without enough
// keyword overlap against sufficiently similar passages, and leakage of
// internal instructions.
func EvaluateAnswer(query, answer string, passages []*core.ScoredCandidate) []string {
	var flags []string
	answerLower := strings.ToLower(answer)

	if len(passages) == 0 {
		flags = append(flags, FlagNoContext)
	}

	refused := false
	for _, phrase := range refusalPhrases {
		if strings.Contains(answerLower, phrase) {
			flags = append(flags, FlagRefusal)
			refused = true
			break
		}
	}

	queryLower := strings.ToLower(query)
	hasFeature := false
	for _, term := range featureDomainTerms {
		if strings.Contains(queryLower, term) {
			hasFeature = true
			break
		}
	}

	if hasFeature && !refused && len(passages) > 0 {
		contextKeywords := make(map[string]bool)
		validContext := false
		for _, passage := range passages {
			if passage.Similarity > groundingSimilarity {
				validContext = true
				for keyword := range extractKeywords(passage.Chunk.Text) {
					contextKeywords[keyword] = true
				}
			}
		}

		if !validContext {
			flags = append(flags, FlagUnverifiedFeatureClaim)
		} else {
			overlap := 0
			for keyword := range extractKeywords(answer) {
				if contextKeywords[keyword] {
					overlap++
				}
			}
			if overlap < 2 {
				flags = append(flags, FlagUnverifiedFeatureClaim)
			}
		}
	}

	for _, pattern := range leakagePatterns {
		if pattern.MatchString(answer) {
			flags = append(flags, FlagSystemLeakage)
			break
		}
	}

	return flags
}

// Confidence folds retrieval quality and answer checks into a single 0..1
// score. It is a heuristic for triage, not a calibrated probability: base it
// on the average dense similarity of the assembled passages, reward present
// citations, and pull it down hard for each raised flag.
func Confidence(answer string, avgSimilarity float64, flags []string) float64 {
	confidence := clamp01(avgSimilarity)

	if citationPattern.MatchString(answer) {
		confidence += 0.2
	}

	for _, flag := range flags {
		switch flag {
		case FlagNoContext:
			return 0.0
		case FlagRefusal:
			if confidence > 0.2 {
				confidence = 0.2
			}
		case FlagUnverifiedFeatureClaim:
			confidence -= 0.3
		case FlagSystemLeakage:
			confidence -= 0.5
		}
	}

	return clamp01(confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Stopwords for keyword extraction: common functional words plus
// documentation navigation terms that carry no feature signal.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "must": true,
	"can": true, "shall": true, "to": true, "of": true, "in": true,
	"on": true, "at": true, "for": true, "from": true, "with": true,
	"by": true, "about": true, "as": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true,
	"below": true, "between": true, "under": true, "this": true,
	"that": true, "these": true, "those": true, "i": true, "you": true,
	"he": true, "she": true, "it": true, "we": true, "they": true,
	"me": true, "him": true, "her": true, "us": true, "them": true,
	"my": true, "your": true, "his": true, "its": true, "our": true,
	"their": true, "what": true, "which": true, "who": true, "whom": true,
	"when": true, "where": true, "why": true, "how": true, "all": true,
	"each": true, "every": true, "both": true, "few": true, "more": true,
	"most": true, "other": true, "some": true, "such": true, "no": true,
	"not": true, "only": true, "same": true, "than": true, "too": true,
	"very": true, "just": true, "own": true, "so": true, "if": true,
	"then": true, "also": true, "up": true, "out": true, "any": true,
	"here": true, "there": true, "now": true, "get": true, "use": true,
	"used": true, "using": true, "like": true, "well": true, "new": true,
	"user": true, "click": true, "go": true, "see": true, "make": true,
	"note": true, "please": true, "refer": true,
}

const (
	keywordMinLength = 4
	keywordTopN      = 15
)

// extractKeywords returns the most frequent meaningful terms in text:
// punctuation stripped, stopwords removed, minimum length enforced, top-N
// by frequency.
func extractKeywords(text string) map[string]bool {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}

	freq := make(map[string]int)
	for _, word := range strings.Fields(b.String()) {
		if len(word) < keywordMinLength || stopwords[word] {
			continue
		}
		freq[word]++
	}

	type kv struct {
		word  string
		count int
	}
	sorted := make([]kv, 0, len(freq))
	for word, count := range freq {
		sorted = append(sorted, kv{word, count})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})

	keywords := make(map[string]bool, keywordTopN)
	for i, entry := range sorted {
		if i >= keywordTopN {
			break
		}
		keywords[entry.word] = true
	}
	return keywords
}
