package routing

import (
	"strings"

	"github.com/poiesic/answerit/core"
)

// Signal weights. The threshold sits at 2, so any single strong signal
// (reasoning, troubleshooting, procedural) routes complex on its own while
// weak signals (length, multiple questions, emotion) must combine.
const (
	complexThreshold = 2

	longQueryWords = 15
)

var (
	reasoningKeywords = []string{"why", "compare", "evaluate", "difference", "explain", "reason"}

	troubleshootingKeywords = []string{"fail", "error", "broken", "bug", "issue", "doesn't work", "not working", "crash"}

	proceduralPhrases = []string{"how to", "steps", "process", "walk me through", "guide", "tutorial"}

	emotionalKeywords = []string{"frustrated", "complaint", "urgent", "asap", "angry", "terrible", "worst"}
)

// Router classifies queries as simple or complex and picks a generation
// model accordingly. Routing is a pure function of the query text: no state,
// no side effects, identical input always yields identical output.
type Router struct {
	simpleModel  string
	complexModel string
}

// NewRouter creates a router that assigns the given models to the two
// classification outcomes.
func NewRouter(simpleModel, complexModel string) *Router {
	return &Router{
		simpleModel:  simpleModel,
		complexModel: complexModel,
	}
}

// Route scores the query's complexity signals and returns the decision.
// All signals are evaluated; scoring never short-circuits, so the reported
// score is the full sum.
func (r *Router) Route(query string) core.RouteDecision {
	lowered := strings.ToLower(query)
	words := strings.Fields(lowered)

	score := 0

	if len(words) > longQueryWords {
		score++
	}

	if strings.Count(query, "?") > 1 {
		score++
	}

	if containsAnyWord(words, lowered, reasoningKeywords) {
		score += 2
	}

	if containsAnyWord(words, lowered, troubleshootingKeywords) {
		score += 2
	}

	// Procedural phrases are multi-word, so substring matching is the
	// right check here
	for _, phrase := range proceduralPhrases {
		if strings.Contains(lowered, phrase) {
			score += 2
			break
		}
	}

	if containsAnyWord(words, lowered, emotionalKeywords) {
		score++
	}

	if score >= complexThreshold {
		return core.RouteDecision{
			Classification: core.ClassificationComplex,
			Model:          r.complexModel,
			Score:          score,
		}
	}
	return core.RouteDecision{
		Classification: core.ClassificationSimple,
		Model:          r.simpleModel,
		Score:          score,
	}
}

// containsAnyWord reports whether any keyword appears in the query. Single
// words must match a whole token ("why" must not fire on "whyte"); keywords
// containing a space fall back to substring matching against the full text.
func containsAnyWord(words []string, lowered string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(keyword, " ") {
			if strings.Contains(lowered, keyword) {
				return true
			}
			continue
		}
		for _, word := range words {
			if strings.Trim(word, ".,!?;:'\"-()[]{}") == keyword {
				return true
			}
		}
	}
	return false
}
