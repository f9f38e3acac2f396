package quiz

import "kiddoland-quiz-service/internal/domain"

const (
	excellentThreshold = 80
	goodThreshold      = 60
)

// FeedbackFor picks the encouragement tier for a completed quiz.
func FeedbackFor(res domain.Results) domain.Feedback {
	switch {
	case res.Percentage >= excellentThreshold:
		return domain.Feedback{Badge: "trophy", Message: "Excellent! You're a math star!"}
	case res.Percentage >= goodThreshold:
		return domain.Feedback{Badge: "star", Message: "Good job! Keep practicing!"}
	default:
		return domain.Feedback{Badge: "thumbs_up", Message: "Nice try! Practice makes perfect!"}
	}
}

// AnswerNotification is the toast shown after a submission.
func AnswerNotification(res domain.AnswerResult) (string, domain.NotificationKind) {
	if res.Correct {
		return "Correct! 🎉", domain.NotificationSuccess
	}
	return "Try again! 💪", domain.NotificationError
}
