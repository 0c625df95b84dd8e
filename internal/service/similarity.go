package service

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Similarity scores two normalized finding texts in [0,1].
type Similarity interface {
	Score(a, b string) float64
}

// NormalizeText folds case and width, drops punctuation and collapses
// whitespace so that cosmetic differences do not affect similarity.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// JaccardSimilarity compares the sets of whitespace tokens.
type JaccardSimilarity struct{}

func (JaccardSimilarity) Score(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// EditRatioSimilarity is 1 - levenshtein(a,b)/max(len(a),len(b)) over runes.
type EditRatioSimilarity struct{}

func (EditRatioSimilarity) Score(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// MaxSimilarity takes the best score of several measures.
type MaxSimilarity []Similarity

func (m MaxSimilarity) Score(a, b string) float64 {
	best := 0.0
	for _, s := range m {
		if v := s.Score(a, b); v > best {
			best = v
		}
	}
	return best
}

// DefaultSimilarity catches both reordered wording (Jaccard) and small
// edits (edit ratio).
func DefaultSimilarity() Similarity {
	return MaxSimilarity{JaccardSimilarity{}, EditRatioSimilarity{}}
}
