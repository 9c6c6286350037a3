package domain

import "time"

// Question is the client view of a single multiple-choice question as the
// question service returns it. Mutations go through a full-record PUT.
type Question struct {
	ID            string `json:"id"`
	Text          string `json:"questionText"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer"`
	QuizID        string `json:"quizId"`
	QuizName      string `json:"quizName"`
	HostUsername  string `json:"hostUsername,omitempty"`
}

// Option returns the option text for a letter label A-D.
func (q Question) Option(label string) string {
	switch label {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// OptionLabels enumerates the four answer labels in display order.
var OptionLabels = []string{"A", "B", "C", "D"}

// QuizSummary is a host-facing listing row. Reconstructed on every fetch.
type QuizSummary struct {
	QuizID        string     `json:"quizId"`
	QuizName      string     `json:"quizName"`
	QuestionCount int        `json:"questionCount"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// QuizRow is the super-admin composite listing row assembled from several
// fetches. Degraded marks rows whose detail fetches failed and were replaced
// by placeholders.
type QuizRow struct {
	QuizID       string
	Title        string
	Creator      string
	Questions    int
	Participants int
	Degraded     bool
}

// Answer pairs a question with the selected option label.
type Answer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// Submission is the payload posted to the result service.
type Submission struct {
	QuizID          string   `json:"quizId"`
	Answers         []Answer `json:"answers"`
	StudentUsername string   `json:"studentUsername"`
}

// Score is the result service's grading response for one submission.
type Score struct {
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// ParticipantResult is one student's recorded outcome for a quiz. QuizID is
// only populated by the admin-wide result listings.
type ParticipantResult struct {
	StudentUsername string    `json:"studentUsername"`
	QuizID          string    `json:"quizId,omitempty"`
	CorrectAnswers  int       `json:"correctAnswers"`
	TotalQuestions  int       `json:"totalQuestions"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// OnlineStatus is the presence tier derived from heartbeats server-side.
type OnlineStatus string

const (
	StatusOnline   OnlineStatus = "online"
	StatusInactive OnlineStatus = "inactive"
	StatusOffline  OnlineStatus = "offline"
)

// User is the auth service's account record as shown in the console.
type User struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	Role          string       `json:"role"`
	Blocked       bool         `json:"isBlocked"`
	OnlineStatus  OnlineStatus `json:"onlineStatus"`
	LastLoginTime *time.Time   `json:"lastLoginTime,omitempty"`
}

// ActivityLog is one audit entry from the auth service, or a synthesized
// stand-in when the logs endpoint is unavailable.
type ActivityLog struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
}

// JournalEntry records a pending destructive sub-operation so a partially
// failed batch can be replayed later.
type JournalEntry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"` // JournalDeleteQuestion or JournalDeleteResults
	QuizID     string    `json:"quizId"`
	QuestionID string    `json:"questionId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	JournalDeleteQuestion = "question"
	JournalDeleteResults  = "results"
)
