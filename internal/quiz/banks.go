package quiz

import "kiddoland-quiz-service/internal/domain"

// MathBankID identifies the built-in arithmetic quiz.
const MathBankID = "math-quiz"

// MathBank is the built-in five-question arithmetic quiz.
func MathBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID:      MathBankID,
		Title:   "Math",
		Subject: "math",
		Questions: []domain.Question{
			domain.MustQuestion("m1", "What is 2 + 3?", []string{"4", "5", "6", "7"}, 1),
			domain.MustQuestion("m2", "How many apples are in 2 groups of 3?", []string{"5", "6", "7", "8"}, 1),
			domain.MustQuestion("m3", "What is 10 - 4?", []string{"5", "6", "7", "8"}, 1),
			domain.MustQuestion("m4", "How many sides does a triangle have?", []string{"2", "3", "4", "5"}, 1),
			domain.MustQuestion("m5", "What is 5 × 2?", []string{"8", "9", "10", "11"}, 2),
		},
	}
}

// DefaultBanks returns the built-in banks keyed by ID.
func DefaultBanks() map[string]domain.QuestionBank {
	math := MathBank()
	return map[string]domain.QuestionBank{math.ID: math}
}
