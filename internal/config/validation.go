package config

import (
	"fmt"

	"dimos/internal/questions"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Address string `json:"address"`
	Message string `json:"message"`
}

// Validate checks stored answers against the question bank. Unknown
// addresses are warnings (they may come from a newer release); answers
// that no longer match a choice or fail validation are errors.
func (c Config) Validate() []ValidationResult {
	bank := make(map[questions.Key]questions.Question)
	for _, q := range questions.Bank() {
		bank[q.Key] = q
	}

	var results []ValidationResult
	for _, addr := range c.AnswerAddresses() {
		value := c.Answers[addr]
		key, ok := questions.Lookup(addr)
		if !ok {
			results = append(results, ValidationResult{
				Level:   "warning",
				Address: addr,
				Message: "unknown answer key, ignored",
			})
			continue
		}
		q, ok := bank[key]
		if !ok {
			continue
		}
		if msg := checkAnswer(q, value); msg != "" {
			results = append(results, ValidationResult{Level: "error", Address: addr, Message: msg})
		}
	}
	return results
}

// HasErrors reports whether any result is an error.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func checkAnswer(q questions.Question, value string) string {
	switch q.Kind {
	case questions.Choice:
		for _, opt := range q.Options {
			if opt.Value == value {
				return ""
			}
		}
		return fmt.Sprintf("%q is not one of the choices for %q", value, q.Prompt)
	default:
		if q.Validate != nil {
			if err := q.Validate(value); err != nil {
				return err.Error()
			}
		}
		return ""
	}
}
