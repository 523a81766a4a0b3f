package scoring

import (
	"strings"
	"unicode"
)

// #region stopwords

// stopwords contains common English words excluded from overlap matching.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "be": true, "been": true,
	"being": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "shall": true, "not": true,
	"no": true, "and": true, "or": true, "but": true, "if": true,
	"then": true, "than": true, "so": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "in": true, "into": true,
	"of": true, "on": true, "to": true, "with": true, "about": true,
	"up": true, "out": true, "it": true, "its": true, "this": true,
	"that": true, "what": true, "which": true, "who": true, "how": true,
	"when": true, "where": true, "why": true, "you": true, "me": true,
	"i": true, "my": true, "your": true, "we": true, "they": true,
	"he": true, "she": true, "her": true, "him": true, "us": true,
	"them": true, "tell": true, "there": true, "their": true, "our": true,
}

// #endregion stopwords

// #region hedge-terms

// hedgeTerms are qualifier phrases counted toward the uncertainty score.
var hedgeTerms = []string{
	"maybe", "perhaps", "possibly", "probably", "likely",
	"i think", "i believe", "i guess", "i suppose", "i assume",
	"not sure", "not certain", "unsure", "unclear", "uncertain",
	"it seems", "it appears", "seemingly", "apparently", "presumably",
	"somewhat", "sort of", "kind of", "more or less", "roughly",
	"approximately", "around", "hard to say", "difficult to say",
	"i'm not sure", "can't be certain", "may or may not",
}

// #endregion hedge-terms

// #region reasoning-markers

// reasoningMarkers are causal connectives and enumerated-justification
// markers counted toward the reasoning-depth score.
var reasoningMarkers = []string{
	"because", "therefore", "thus", "hence", "consequently",
	"as a result", "which means", "it follows", "so that", "due to",
	"implies", "given that", "leads to", "follows from", "in order to",
	"for this reason", "on the other hand", "in contrast", "however",
	"first", "second", "third", "finally", "in conclusion",
	"for example", "for instance", "suppose", "consider", "if we assume",
}

// #endregion reasoning-markers

// #region tokenize

// tokenize splits text into unique lowercase non-stopword tokens.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range words {
		if len(w) < 2 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// sharedTokens returns the count of tokens present in both slices.
func sharedTokens(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	count := 0
	for _, t := range b {
		if set[t] {
			count++
		}
	}
	return count
}

// phraseCount counts non-overlapping occurrences of each phrase in lower.
func phraseCount(lower string, phrases []string) int {
	count := 0
	for _, p := range phrases {
		count += strings.Count(lower, p)
	}
	return count
}

// #endregion tokenize
