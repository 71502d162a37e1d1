// Package optimization provides shared data structures for optimization results.
package optimization

import "github.com/iwvelando/mortgage-calculator/pkg/loans"

// Summary captures the result of a single payment search.
type Summary struct {
	Field        string             `json:"field"`
	TargetMonths int                `json:"targetMonths"`
	Original     float64            `json:"original,omitempty"`
	Value        float64            `json:"value"`
	Extra        float64            `json:"extra,omitempty"`
	Payoff       loans.PayoffResult `json:"payoff"`
	Iterations   int                `json:"iterations"`
	Converged    bool               `json:"converged"`
	Notes        []string           `json:"notes,omitempty"`
}
