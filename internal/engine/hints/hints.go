// Package hints infers likely job-category directions from resume free text.
//
// Used when the user defers a decision: the top-ranked hint lets the agent
// proceed with a concrete search instead of re-asking.
package hints

import (
	"sort"
	"strings"
	"unicode"
)

// Confidence labels how strong a category signal is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// highThreshold is the minimum score for a "high" confidence label.
const highThreshold = 4

// maxHints caps how many directions are returned.
const maxHints = 3

// Hint is one inferred job-category direction.
type Hint struct {
	Category   string     `json:"category"`
	Label      string     `json:"label"`
	Score      int        `json:"score"`
	Confidence Confidence `json:"confidence"`
}

type keyword struct {
	term   string // single word = token match, multi-word = phrase match
	weight int
}

type category struct {
	id       string
	label    string
	keywords []keyword
}

// categories is declared in alphabetical id order; equal scores tie-break by
// this order, which keeps results stable for identical input.
var categories = []category{
	{
		id:    "cleaning",
		label: "Cleaning & Facilities",
		keywords: []keyword{
			{"janitor", 3}, {"custodian", 3}, {"custodial", 3}, {"housekeeping", 3},
			{"cleaning", 2}, {"sanitation", 2}, {"groundskeeping", 2},
		},
	},
	{
		id:    "construction",
		label: "Construction & Trades",
		keywords: []keyword{
			{"construction", 3}, {"carpentry", 2}, {"drywall", 2}, {"framing", 2},
			{"laborer", 2}, {"demolition", 2}, {"roofing", 2}, {"concrete", 2},
		},
	},
	{
		id:    "customer-service",
		label: "Customer Service",
		keywords: []keyword{
			{"customer service", 3}, {"call center", 3}, {"receptionist", 2},
			{"front desk", 2}, {"support", 1},
		},
	},
	{
		id:    "driving",
		label: "Driving & Delivery",
		keywords: []keyword{
			{"driver", 3}, {"cdl", 3}, {"delivery", 2}, {"trucking", 2},
			{"chauffeur", 2}, {"route", 1},
		},
	},
	{
		id:    "food-service",
		label: "Food Service",
		keywords: []keyword{
			{"line cook", 3}, {"cook", 2}, {"kitchen", 2}, {"restaurant", 2},
			{"dishwasher", 2}, {"barista", 2}, {"food prep", 2}, {"server", 1},
		},
	},
	{
		id:    "forklift",
		label: "Forklift Operation",
		keywords: []keyword{
			{"forklift", 3}, {"reach truck", 3}, {"pallet jack", 2}, {"pallet", 1},
		},
	},
	{
		id:    "healthcare-support",
		label: "Healthcare Support",
		keywords: []keyword{
			{"caregiver", 3}, {"cna", 3}, {"home health", 3}, {"patient care", 3},
			{"hospice", 2}, {"med tech", 2}, {"phlebotomy", 2},
		},
	},
	{
		id:    "retail",
		label: "Retail",
		keywords: []keyword{
			{"retail", 3}, {"sales associate", 3}, {"cashier", 2},
			{"merchandising", 2}, {"stocking", 1}, {"storefront", 1},
		},
	},
	{
		id:    "warehouse",
		label: "Warehouse & Logistics",
		keywords: []keyword{
			{"warehouse", 2}, {"order fulfillment", 2}, {"picker", 2}, {"packer", 2},
			{"pallet", 1}, {"inventory", 1}, {"shipping", 1},
		},
	},
}

// Infer scores the fixed category buckets against resume free text and
// returns up to three non-zero directions sorted by descending score.
// Deterministic: equal scores keep alphabetical category order.
// Empty or unmatched text yields nil.
func Infer(text string) []Hint {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	folded := strings.ToLower(text)
	tokens := tokenize(folded)

	var out []Hint
	for _, cat := range categories {
		score := 0
		for _, kw := range cat.keywords {
			if matches(kw.term, folded, tokens) {
				score += kw.weight
			}
		}
		if score == 0 {
			continue
		}
		conf := ConfidenceMedium
		if score >= highThreshold {
			conf = ConfidenceHigh
		}
		out = append(out, Hint{Category: cat.id, Label: cat.label, Score: score, Confidence: conf})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxHints {
		out = out[:maxHints]
	}
	return out
}

// Top returns the single best direction, used for the "user defers" auto-pick.
func Top(text string) *Hint {
	hs := Infer(text)
	if len(hs) == 0 {
		return nil
	}
	return &hs[0]
}

// matches checks a keyword against the text: single words match whole tokens,
// phrases match as substrings of the folded text.
func matches(term, folded string, tokens map[string]bool) bool {
	if strings.ContainsRune(term, ' ') {
		return strings.Contains(folded, term)
	}
	return tokens[term]
}

// tokenize splits folded text into a set of letter/digit words.
func tokenize(folded string) map[string]bool {
	set := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			set[word.String()] = true
			word.Reset()
		}
	}
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return set
}
