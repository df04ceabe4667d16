package dto

// ResultKind tags the generated result variants.
type ResultKind string

// Generated result kinds.
const (
	KindLearningPlan    ResultKind = "learning_plan"
	KindDetailedContent ResultKind = "detailed_content"
	KindQuizQuestions   ResultKind = "quiz_questions"
	KindGrading         ResultKind = "grading"
	KindTutorAnswer     ResultKind = "tutor_answer"
)

// GeneratedResult is implemented by every value produced by the generation
// pipeline. Results are always fully populated; slices are never nil.
type GeneratedResult interface {
	Kind() ResultKind
}

// LearnerProfile personalises prompts. It is read only input.
type LearnerProfile struct {
	Qualification         string   `json:"qualification"`
	Specialization        string   `json:"specialization"`
	Profession            string   `json:"profession"`
	IncludeCode           bool     `json:"include_code"`
	PreferredExampleTypes []string `json:"preferred_example_types"`
	FocusAreas            []string `json:"focus_areas"`
}

// PlanDay is one day of a generated curriculum.
type PlanDay struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Subtopics  []string `json:"subtopics"`
	Objectives []string `json:"objectives"`
}

// LearningPlan is a generated multi-day curriculum.
type LearningPlan struct {
	Title    string    `json:"title"`
	Overview string    `json:"overview"`
	Days     []PlanDay `json:"days"`
}

// Kind implements GeneratedResult.
func (LearningPlan) Kind() ResultKind { return KindLearningPlan }

// DetailedContent is the generated lesson body for one subtopic.
type DetailedContent struct {
	Content               string   `json:"content"`
	KeyPoints             []string `json:"key_points"`
	Examples              []string `json:"examples"`
	PracticalApplications []string `json:"practical_applications"`
}

// Kind implements GeneratedResult.
func (DetailedContent) Kind() ResultKind { return KindDetailedContent }

// QuizQuestion is a single generated question.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Type        string   `json:"type"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// QuizQuestionSet groups generated questions.
type QuizQuestionSet struct {
	Questions []QuizQuestion `json:"questions"`
}

// Kind implements GeneratedResult.
func (QuizQuestionSet) Kind() ResultKind { return KindQuizQuestions }

// GradingResult is the evaluation of a free text answer on a 0-10 scale.
type GradingResult struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Kind implements GeneratedResult.
func (GradingResult) Kind() ResultKind { return KindGrading }

// TutorAnswer is the tutor's reply to a learner question.
type TutorAnswer struct {
	Answer            string   `json:"answer"`
	FollowUpQuestions []string `json:"follow_up_questions"`
	References        []string `json:"references"`
}

// Kind implements GeneratedResult.
func (TutorAnswer) Kind() ResultKind { return KindTutorAnswer }

// PlanRequest holds the inputs for generating a learning plan.
type PlanRequest struct {
	Topic        string
	DurationDays int
	Level        string
	DailyTime    string
	Profile      *LearnerProfile
}

// SubtopicRequest holds the inputs for generating lesson content.
type SubtopicRequest struct {
	Topic    string
	DayTitle string
	Subtopic string
	Level    string
	Profile  *LearnerProfile
}

// QuizRequest holds the inputs for generating quiz questions.
type QuizRequest struct {
	Topic    string
	Subtopic string
	Content  string
	Count    int
	Level    string
	Profile  *LearnerProfile
}

// GradeRequest holds the inputs for grading a theory answer.
type GradeRequest struct {
	Question      string
	Answer        string
	KeyPoints     []string
	LessonContent string
	Profile       *LearnerProfile
}

// TutorRequest holds the inputs for asking the tutor a question.
type TutorRequest struct {
	Question      string
	Topic         string
	LessonContext string
	Profile       *LearnerProfile
}
