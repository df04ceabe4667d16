package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/pkg/llmjson"
)

// Defaults substituted when generated fields are missing or malformed.
const (
	defaultContent      = "Content not available"
	defaultFeedback     = "No feedback available"
	defaultTutorAnswer  = "I'm sorry, I couldn't generate an answer right now."
	defaultQuestionType = "theory"
	maxScore            = 10.0
)

// Coerce maps a recovered object onto the result variant named by kind. The
// returned value is always fully populated; unknown kinds yield nil.
func Coerce(kind dto.ResultKind, obj llmjson.Object) dto.GeneratedResult {
	if obj == nil {
		obj = llmjson.Object{}
	}

	switch kind {
	case dto.KindLearningPlan:
		return coerceLearningPlan(obj)
	case dto.KindDetailedContent:
		return coerceDetailedContent(obj)
	case dto.KindQuizQuestions:
		return coerceQuizQuestions(obj)
	case dto.KindGrading:
		return coerceGrading(obj)
	case dto.KindTutorAnswer:
		return coerceTutorAnswer(obj)
	default:
		return nil
	}
}

func coerceLearningPlan(obj llmjson.Object) dto.LearningPlan {
	plan := dto.LearningPlan{
		Title:    stringField(obj, "", "title"),
		Overview: stringField(obj, "", "overview", "description"),
		Days:     []dto.PlanDay{},
	}

	rawDays, _ := lookup(obj, "days", "schedule").([]any)
	for _, item := range rawDays {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		day := coercePlanDay(llmjson.Object(entry))
		if day.Title == "" && len(day.Subtopics) == 0 {
			continue
		}
		plan.Days = append(plan.Days, day)
	}

	numberPlanDays(plan.Days)
	for i := range plan.Days {
		if plan.Days[i].Title == "" {
			plan.Days[i].Title = fmt.Sprintf("Day %d", plan.Days[i].Day)
		}
	}

	return plan
}

// numberPlanDays keeps explicit day numbers only when every day has a unique
// positive one; otherwise the days are renumbered 1..n in order.
func numberPlanDays(days []dto.PlanDay) {
	seen := make(map[int]struct{}, len(days))
	valid := true
	for _, day := range days {
		if _, dup := seen[day.Day]; dup || day.Day <= 0 {
			valid = false
			break
		}
		seen[day.Day] = struct{}{}
	}
	if valid {
		return
	}
	for i := range days {
		days[i].Day = i + 1
	}
}

func coercePlanDay(obj llmjson.Object) dto.PlanDay {
	day := 0
	if n, ok := numberValue(obj["day"]); ok && n >= 1 {
		day = int(n)
	}
	return dto.PlanDay{
		Day:        day,
		Title:      stringField(obj, "", "title", "topic"),
		Subtopics:  stringSliceField(obj, "subtopics", "topics"),
		Objectives: stringSliceField(obj, "objectives", "goals"),
	}
}

func coerceDetailedContent(obj llmjson.Object) dto.DetailedContent {
	return dto.DetailedContent{
		Content:               stringField(obj, defaultContent, "content"),
		KeyPoints:             stringSliceField(obj, "keyPoints", "key_points"),
		Examples:              stringSliceField(obj, "examples"),
		PracticalApplications: stringSliceField(obj, "practicalApplications", "practical_applications"),
	}
}

func coerceQuizQuestions(obj llmjson.Object) dto.QuizQuestionSet {
	set := dto.QuizQuestionSet{Questions: []dto.QuizQuestion{}}

	rawQuestions, _ := obj["questions"].([]any)
	for _, item := range rawQuestions {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q := llmjson.Object(entry)
		question := stringField(q, "", "question", "prompt")
		if question == "" {
			continue
		}
		set.Questions = append(set.Questions, dto.QuizQuestion{
			Question:    question,
			Type:        strings.ToLower(stringField(q, defaultQuestionType, "type")),
			Options:     stringSliceField(q, "options", "choices"),
			Answer:      scalarText(lookup(q, "answer", "correctAnswer", "correct_answer")),
			Explanation: stringField(q, "", "explanation"),
		})
	}

	return set
}

func coerceGrading(obj llmjson.Object) dto.GradingResult {
	return dto.GradingResult{
		Score:        scoreField(obj, "score"),
		Feedback:     stringField(obj, defaultFeedback, "feedback"),
		Strengths:    stringSliceField(obj, "strengths"),
		Improvements: stringSliceField(obj, "improvements", "areasForImprovement"),
	}
}

func coerceTutorAnswer(obj llmjson.Object) dto.TutorAnswer {
	return dto.TutorAnswer{
		Answer:            stringField(obj, defaultTutorAnswer, "answer"),
		FollowUpQuestions: stringSliceField(obj, "followUpQuestions", "follow_up_questions"),
		References:        stringSliceField(obj, "references", "resources"),
	}
}

// lookup returns the value of the first key present in obj.
func lookup(obj llmjson.Object, keys ...string) any {
	for _, key := range keys {
		if value, ok := obj[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

// stringField returns the first non-blank string value among keys, or def.
func stringField(obj llmjson.Object, def string, keys ...string) string {
	for _, key := range keys {
		if value, ok := obj[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return def
}

// stringSliceField returns the first array value among keys with falsy
// elements removed. The result is never nil.
func stringSliceField(obj llmjson.Object, keys ...string) []string {
	for _, key := range keys {
		items, ok := obj[key].([]any)
		if !ok {
			continue
		}
		values := make([]string, 0, len(items))
		for _, item := range items {
			if text := scalarString(item); text != "" {
				values = append(values, text)
			}
		}
		return values
	}
	return []string{}
}

// scoreField reads a number or numeric string and clamps it to [0, 10].
func scoreField(obj llmjson.Object, key string) float64 {
	score, ok := numberValue(obj[key])
	if !ok {
		return 0
	}
	return math.Min(math.Max(score, 0), maxScore)
}

func numberValue(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// scalarString renders truthy scalars as text; zero values, objects and
// arrays become "".
func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

// scalarText renders a single scalar value as text, keeping zero and false.
func scalarText(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}
