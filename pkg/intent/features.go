package intent

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into lowercase word tokens. Input is NFC-normalized
// first so byte-level encoding variants of the same text produce identical
// tokens. Single-character tokens carry no signal and are dropped.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// NGrams produces the unigram+bigram feature terms for a token stream.
// Bigram terms join adjacent tokens with a single space.
func NGrams(tokens []string) []string {
	grams := make([]string, 0, 2*len(tokens))
	grams = append(grams, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}

// Vectorizer maps text to an L2-normalized TF-IDF feature vector over a
// fixed vocabulary. Immutable once built; safe for concurrent use.
type Vectorizer struct {
	Vocabulary map[string]int
	IDF        []float64
}

// Transform returns the sparse TF-IDF representation of text as a map of
// feature index to weight. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(text string) map[int]float64 {
	counts := make(map[int]float64)
	for _, g := range NGrams(Tokenize(text)) {
		if idx, ok := v.Vocabulary[g]; ok {
			counts[idx]++
		}
	}

	var sumSquares float64
	for idx, tf := range counts {
		w := tf * v.IDF[idx]
		counts[idx] = w
		sumSquares += w * w
	}
	if sumSquares > 0 {
		scale := 1 / math.Sqrt(sumSquares)
		for idx := range counts {
			counts[idx] *= scale
		}
	}
	return counts
}

// FitVectorizer builds a vocabulary and smoothed IDF weights from a corpus.
// The vocabulary is assigned in lexicographic term order so fitting is
// deterministic for identical input.
func FitVectorizer(corpus []string) *Vectorizer {
	docFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, g := range NGrams(Tokenize(doc)) {
			if !seen[g] {
				seen[g] = true
				docFreq[g]++
			}
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return &Vectorizer{Vocabulary: vocab, IDF: idf}
}
