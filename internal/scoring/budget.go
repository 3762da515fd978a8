package scoring

import "strings"

// Budget brackets in ascending order, as labelled on the pricing sections.
var BudgetBrackets = []string{
	"Under ₹25K",
	"₹25K-₹50K",
	"₹50K-₹1L",
	"₹1L-₹1.5L",
	"₹1.5L-₹2L",
	"₹2L+",
}

var bracketPoints = []int{3, 8, 12, 17, 21, 25}

var bracketAliases = map[string]int{
	"under25k":  0,
	"<25k":      0,
	"below25k":  0,
	"0-25k":     0,
	"25k-50k":   1,
	"50k-1l":    2,
	"50k-100k":  2,
	"1l-1.5l":   3,
	"100k-150k": 3,
	"1.5l-2l":   4,
	"150k-200k": 4,
	"2l+":       5,
	"above2l":   5,
	">2l":       5,
	"200k+":     5,
}

var budgetReplacer = strings.NewReplacer(
	" ", "",
	"₹", "",
	"rs.", "",
	"inr", "",
	"–", "-",
	"—", "-",
	"lakhs", "l",
	"lakh", "l",
	"to", "-",
)

// BudgetBracket returns the index of the declared budget in BudgetBrackets.
func BudgetBracket(budget string) (int, bool) {
	key := budgetReplacer.Replace(strings.ToLower(strings.TrimSpace(budget)))
	if key == "" {
		return 0, false
	}
	idx, ok := bracketAliases[key]
	return idx, ok
}

func BudgetPoints(budget string) int {
	idx, ok := BudgetBracket(budget)
	if !ok {
		return 0
	}
	return bracketPoints[idx]
}
