package models

import "time"

// Vote outcome constants
const (
	VoteCreated = "created"
	VoteUpdated = "updated"
)

// Request types

type SignupRequest struct {
	Username  string `json:"username"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type VoteRequest struct {
	ChoiceID string `json:"choice_id"`
}

type CreateQuestionRequest struct {
	QuestionText string     `json:"question_text"`
	PubDate      *time.Time `json:"pub_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Choices      []string   `json:"choices"`
}

type AddChoiceRequest struct {
	ChoiceText string `json:"choice_text"`
}

// Response types

type AccountResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type IndexResponse struct {
	LatestQuestionList []QuestionSummary `json:"latest_question_list"`
}

type QuestionSummary struct {
	Question
	Published            string `json:"published"` // e.g. "2 days ago"
	CanVote              bool   `json:"can_vote"`
	WasPublishedRecently bool   `json:"was_published_recently"`
}

type DetailResponse struct {
	Question Question `json:"question"`
	Choices  []Choice `json:"choices"`
	PrevVote *Vote    `json:"prev_vote,omitempty"`
}

type VoteResponse struct {
	Status     string `json:"status"` // created or updated
	Choice     Choice `json:"choice"`
	Message    string `json:"message"`
	ResultsURL string `json:"results_url"`
}

type ResultsResponse struct {
	Question   Question       `json:"question"`
	Results    []ChoiceResult `json:"results"`
	TotalVotes int            `json:"total_votes"`
}

type CreateQuestionResponse struct {
	Question Question `json:"question"`
	Choices  []Choice `json:"choices"`
}

type AdminQuestionRow struct {
	Question
	IsPublished          bool `json:"is_published"`
	WasPublishedRecently bool `json:"was_published_recently"`
	CanVote              bool `json:"can_vote"`
}

// Domain types

type Question struct {
	ID           string     `json:"id"`
	QuestionText string     `json:"question_text"`
	PubDate      time.Time  `json:"pub_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

type Choice struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	ChoiceText string `json:"choice_text"`
}

type Vote struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"` // Never expose in JSON
	QuestionID string    `json:"question_id"`
	ChoiceID   string    `json:"choice_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ChoiceResult struct {
	Choice
	Votes int `json:"votes"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// InvalidChoiceResponse re-renders the detail view with an inline error.
type InvalidChoiceResponse struct {
	Error        string   `json:"error"`
	ErrorMessage string   `json:"error_message"`
	Question     Question `json:"question"`
	Choices      []Choice `json:"choices"`
}
