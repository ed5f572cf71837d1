// Package metrics computes deterministic text-quality scores for
// generated responses against reference answers, in the BLEU/ROUGE
// family of n-gram overlap measures. Scoring is total: it never fails
// or panics, for any input text.
package metrics

import "math"

// maxOrder is the largest n-gram order considered by Score. Shorter
// candidates use orders up to their own token count.
const maxOrder = 4

// Score returns a similarity score in [0, 1] for candidate against
// reference. It is a BLEU-style measure: the geometric mean of clipped
// n-gram precisions for n = 1..min(4, candidate length), multiplied by
// a brevity penalty when the candidate is shorter than the reference.
// An empty candidate or reference scores 0; identical non-empty texts
// score 1. Deterministic for fixed inputs.
func Score(candidate, reference string) float64 {
	cand := Tokenize(candidate)
	ref := Tokenize(reference)
	if len(cand) == 0 || len(ref) == 0 {
		return 0
	}

	orders := maxOrder
	if len(cand) < orders {
		orders = len(cand)
	}

	logSum := 0.0
	for n := 1; n <= orders; n++ {
		matched, total := clippedMatches(cand, ref, n)
		if n == 1 && matched == 0 {
			// No shared vocabulary at all
			return 0
		}
		p := float64(matched) / float64(total)
		if matched == 0 {
			// Lin-Och style smoothing keeps a single missing higher
			// order from zeroing the whole score
			p = 1.0 / float64(2*total)
		}
		logSum += math.Log(p)
	}
	score := math.Exp(logSum / float64(orders))

	// Brevity penalty: recall guard against one-word candidates
	// scoring full precision
	if len(cand) < len(ref) {
		score *= math.Exp(1.0 - float64(len(ref))/float64(len(cand)))
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// PrecisionRecall returns the unigram overlap of candidate against
// reference in both directions. Precision is the fraction of candidate
// tokens that appear in the reference (clipped by reference counts);
// recall is the fraction of reference tokens covered by the candidate.
// The two are deliberately kept separate rather than conflated.
func PrecisionRecall(candidate, reference string) (precision, recall float64) {
	cand := Tokenize(candidate)
	ref := Tokenize(reference)
	if len(cand) == 0 || len(ref) == 0 {
		return 0, 0
	}
	matched, _ := clippedMatches(cand, ref, 1)
	return float64(matched) / float64(len(cand)), float64(matched) / float64(len(ref))
}

// F1 is the harmonic mean of unigram precision and recall, in [0, 1].
func F1(candidate, reference string) float64 {
	p, r := PrecisionRecall(candidate, reference)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// clippedMatches counts candidate n-grams that also occur in the
// reference, clipping each n-gram's credit at its reference count
// (modified precision, so repeating a matching word earns nothing
// extra). total is the number of candidate n-grams.
func clippedMatches(cand, ref []string, n int) (matched, total int) {
	candCounts := ngramCounts(cand, n)
	refCounts := ngramCounts(ref, n)
	for gram, count := range candCounts {
		total += count
		if rc := refCounts[gram]; rc < count {
			matched += rc
		} else {
			matched += count
		}
	}
	return matched, total
}
