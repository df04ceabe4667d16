package dto

import "time"

// SubtopicContentRequest asks for the lesson body of a plan subtopic.
type SubtopicContentRequest struct {
	Subtopic string `json:"subtopic" validate:"required,max=255"`
	Refresh  bool   `json:"refresh"`
}

// LessonContentResponse wraps lesson content with its origin.
type LessonContentResponse struct {
	PlanID   string          `json:"plan_id"`
	Day      int             `json:"day"`
	Subtopic string          `json:"subtopic"`
	Content  DetailedContent `json:"content"`
	Cached   bool            `json:"cached"`
}

// QuizCreateRequest asks for quiz questions on a subtopic.
type QuizCreateRequest struct {
	Subtopic string `json:"subtopic" validate:"required,max=255"`
	Count    int    `json:"count" validate:"omitempty,min=1,max=20"`
}

// GradeAnswerRequest submits a theory answer for grading.
type GradeAnswerRequest struct {
	Subtopic string `json:"subtopic" validate:"omitempty,max=255"`
	Question string `json:"question" validate:"required,max=2000"`
	Answer   string `json:"answer" validate:"required,max=10000"`
}

// QuizAttemptResponse is a stored, graded answer.
type QuizAttemptResponse struct {
	ID        uint          `json:"id"`
	PlanID    string        `json:"plan_id"`
	Day       int           `json:"day"`
	Question  string        `json:"question"`
	Answer    string        `json:"answer"`
	Grading   GradingResult `json:"grading"`
	CreatedAt time.Time     `json:"created_at"`
}

// TutorQuestionRequest asks the tutor a question in the context of a plan.
type TutorQuestionRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
	Day      int    `json:"day" validate:"omitempty,min=1"`
	Subtopic string `json:"subtopic" validate:"omitempty,max=255"`
}

// TutorExchangeResponse is a stored tutor question and answer.
type TutorExchangeResponse struct {
	ID        uint        `json:"id"`
	PlanID    string      `json:"plan_id"`
	Day       int         `json:"day,omitempty"`
	Question  string      `json:"question"`
	Answer    TutorAnswer `json:"answer"`
	CreatedAt time.Time   `json:"created_at"`
}
