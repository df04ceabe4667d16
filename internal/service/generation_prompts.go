package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
)

const systemPrompt = "You are an expert educator and curriculum designer. " +
	"Respond with a single valid JSON object and nothing else. " +
	"Use double quoted strings and escape newlines inside string values."

var professionGuidance = map[string]string{
	"student":           "Explain concepts from first principles with clear definitions, study tips and exam oriented summaries.",
	"software engineer": "Emphasise production concerns such as design trade-offs, testing, performance and maintainability.",
	"developer":         "Favour hands-on explanations tied to real codebases, tooling and debugging workflows.",
	"data scientist":    "Relate concepts to data analysis, statistics, experimentation and model evaluation.",
	"teacher":           "Structure the material so it can be taught to others, with analogies and checks for understanding.",
	"designer":          "Use visual metaphors and connect ideas to user experience and design systems.",
	"manager":           "Focus on strategic impact, decision making, team practices and business outcomes.",
	"researcher":        "Reference underlying theory, open problems and how to evaluate evidence rigorously.",
	"doctor":            "Use clinical analogies and stress accuracy, safety and evidence based reasoning.",
	"business analyst":  "Connect concepts to requirements, processes, metrics and stakeholder communication.",
}

const balancedGuidance = "Provide balanced content that mixes theory with practical examples."

// personalization renders the profile specific instructions appended to a
// prompt. A nil profile yields "".
func personalization(profile *dto.LearnerProfile) string {
	if profile == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nLearner profile:\n")
	if profile.Qualification != "" {
		fmt.Fprintf(&b, "- Qualification: %s\n", profile.Qualification)
	}
	if profile.Specialization != "" {
		fmt.Fprintf(&b, "- Specialization: %s\n", profile.Specialization)
	}
	if profile.Profession != "" {
		fmt.Fprintf(&b, "- Profession: %s\n", profile.Profession)
	}

	guidance, ok := professionGuidance[strings.ToLower(strings.TrimSpace(profile.Profession))]
	if !ok {
		guidance = balancedGuidance
	}
	fmt.Fprintf(&b, "\nTailoring: %s\n", guidance)

	if profile.IncludeCode {
		b.WriteString("Include code examples where they help understanding.\n")
	} else {
		b.WriteString("Do not include code; focus on concepts, diagrams described in words and real world scenarios.\n")
	}

	if len(profile.PreferredExampleTypes) > 0 {
		fmt.Fprintf(&b, "Preferred example types: %s.\n", strings.Join(profile.PreferredExampleTypes, ", "))
	}
	if len(profile.FocusAreas) > 0 {
		fmt.Fprintf(&b, "Focus areas: %s.\n", strings.Join(profile.FocusAreas, ", "))
	}

	return b.String()
}

func learningPlanPrompt(req dto.PlanRequest) string {
	level := valueOr(req.Level, "beginner")
	dailyTime := valueOr(req.DailyTime, "1 hour")

	return fmt.Sprintf(`Create a %d day learning plan for the topic "%s".
Learner level: %s. Time available per day: %s.

Return JSON with this shape:
{
  "title": "plan title",
  "overview": "two or three sentences describing the plan",
  "days": [
    {"day": 1, "title": "day title", "subtopics": ["subtopic"], "objectives": ["objective"]}
  ]
}
Produce exactly %d entries in "days", numbered from 1, each with 2 to 5 subtopics.`,
		req.DurationDays, req.Topic, level, dailyTime, req.DurationDays) + personalization(req.Profile)
}

func subtopicContentPrompt(req dto.SubtopicRequest) string {
	return fmt.Sprintf(`Write a detailed lesson on "%s" as part of the day "%s" in a course about "%s".
Learner level: %s.

Return JSON with this shape:
{
  "content": "the lesson body as plain paragraphs",
  "keyPoints": ["key point"],
  "examples": ["example"],
  "practicalApplications": ["application"]
}
Keep "content" as prose without markdown bullets.`,
		req.Subtopic, valueOr(req.DayTitle, req.Subtopic), req.Topic, valueOr(req.Level, "beginner")) + personalization(req.Profile)
}

func quizPrompt(req dto.QuizRequest) string {
	var lesson string
	if req.Content != "" {
		lesson = fmt.Sprintf("\nBase the questions on this lesson:\n%s\n", truncateRunes(req.Content, 4000))
	}

	return fmt.Sprintf(`Write %d quiz questions about "%s" in the topic "%s" for a %s learner.%s
Return JSON with this shape:
{
  "questions": [
    {"question": "text", "type": "multiple_choice or theory", "options": ["option"], "answer": "correct answer", "explanation": "why"}
  ]
}
Multiple choice questions need 4 options; theory questions have an empty options list.`,
		req.Count, req.Subtopic, req.Topic, valueOr(req.Level, "beginner"), lesson) + personalization(req.Profile)
}

func gradePrompt(req dto.GradeRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade the learner's answer on a scale from 0 to 10.\n\nQuestion: %s\n\nAnswer: %s\n", req.Question, req.Answer)
	if len(req.KeyPoints) > 0 {
		fmt.Fprintf(&b, "\nA complete answer covers these key points: %s.\n", strings.Join(req.KeyPoints, "; "))
	}
	if req.LessonContent != "" {
		fmt.Fprintf(&b, "\nReference lesson:\n%s\n", truncateRunes(req.LessonContent, 3000))
	}
	b.WriteString(`
Return JSON with this shape:
{"score": 7, "feedback": "overall feedback", "strengths": ["strength"], "improvements": ["improvement"]}`)
	return b.String() + personalization(req.Profile)
}

func tutorPrompt(req dto.TutorRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A learner studying \"%s\" asks: %s\n", valueOr(req.Topic, "general topics"), req.Question)
	if req.LessonContext != "" {
		fmt.Fprintf(&b, "\nCurrent lesson context:\n%s\n", truncateRunes(req.LessonContext, 3000))
	}
	b.WriteString(`
Answer as a patient tutor. Return JSON with this shape:
{"answer": "the answer", "followUpQuestions": ["question"], "references": ["resource"]}`)
	return b.String() + personalization(req.Profile)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
