package service

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/pkg/llmjson"
)

const (
	maxFallbackDays      = 7
	defaultQuizCount     = 5
	maxQuizCount         = 20
	fallbackGradeNotice  = "Automatic grading is unavailable, so this score estimates how many key points your answer covers."
	fallbackTutorSuggest = "Review the lesson material and try asking again in a moment."
)

var (
	flatObject    = regexp.MustCompile(`\{[^{}]*\}`)
	dayLine       = regexp.MustCompile(`(?im)^[\s#*\-"]*day\s+(\d+)\s*[:.\-–]\s*(.+?)["*,]*\s*$`)
	jsonKey       = regexp.MustCompile(`"[A-Za-z_][A-Za-z0-9_]*"\s*:`)
	scoreMention  = regexp.MustCompile(`(?i)score["']?\s*[:=]?\s*["']?(-?\d+(?:\.\d+)?)`)
	wordSplitter  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	syntaxRemover = strings.NewReplacer(`\"`, "", `\n`, "\n", `\t`, " ", "{", " ", "}", " ", "[", " ", "]", " ", `"`, "", "`", "")
)

func fallbackLearningPlan(req dto.PlanRequest) dto.LearningPlan {
	days := req.DurationDays
	if days > maxFallbackDays {
		days = maxFallbackDays
	}
	if days < 1 {
		days = 1
	}

	plan := dto.LearningPlan{
		Title:    fmt.Sprintf("Learning plan: %s", req.Topic),
		Overview: fmt.Sprintf("A %d day introduction to %s. Each day combines a short study block with hands-on practice and review.", days, req.Topic),
		Days:     make([]dto.PlanDay, 0, days),
	}
	for n := 1; n <= days; n++ {
		plan.Days = append(plan.Days, dto.PlanDay{
			Day:   n,
			Title: fmt.Sprintf("Day %d: Introduction to %s", n, req.Topic),
			Subtopics: []string{
				fmt.Sprintf("Core concepts of %s", req.Topic),
				"Guided practice",
				"Review and reflection",
			},
			Objectives: []string{fmt.Sprintf("Build a working understanding of %s", req.Topic)},
		})
	}
	return plan
}

func fallbackDetailedContent(req dto.SubtopicRequest) dto.DetailedContent {
	return dto.DetailedContent{
		Content: fmt.Sprintf("%s is a key part of %s. Start by writing down a one sentence definition in your own words, "+
			"then work through a small example and note any questions to raise with your tutor.", req.Subtopic, req.Topic),
		KeyPoints: []string{
			fmt.Sprintf("What %s is and the problem it solves", req.Subtopic),
			fmt.Sprintf("How %s fits into %s", req.Subtopic, req.Topic),
			"Common mistakes and how to avoid them",
		},
		Examples:              []string{},
		PracticalApplications: []string{},
	}
}

var fallbackQuestionTemplates = []string{
	"Explain the main idea of %s in your own words.",
	"Why is %s important?",
	"Describe a situation where you would apply %s.",
	"What are common mistakes people make with %s?",
	"How would you teach %s to a beginner?",
}

func fallbackQuizQuestions(req dto.QuizRequest) dto.QuizQuestionSet {
	count := quizCount(req.Count)
	set := dto.QuizQuestionSet{Questions: make([]dto.QuizQuestion, 0, count)}
	for i := 0; i < count; i++ {
		template := fallbackQuestionTemplates[i%len(fallbackQuestionTemplates)]
		set.Questions = append(set.Questions, dto.QuizQuestion{
			Question: fmt.Sprintf(template, req.Subtopic),
			Type:     defaultQuestionType,
			Options:  []string{},
		})
	}
	return set
}

// fallbackGrading scores an answer by how many key points it mentions.
func fallbackGrading(req dto.GradeRequest) dto.GradingResult {
	result := dto.GradingResult{
		Feedback:     fallbackGradeNotice,
		Strengths:    []string{},
		Improvements: []string{},
	}

	answerWords := wordSet(req.Answer)
	if len(answerWords) == 0 {
		return result
	}
	if len(req.KeyPoints) == 0 {
		result.Score = 5
		return result
	}

	covered := 0
	for _, point := range req.KeyPoints {
		if mentions(answerWords, point) {
			covered++
			result.Strengths = append(result.Strengths, point)
		} else {
			result.Improvements = append(result.Improvements, point)
		}
	}
	result.Score = math.Round(float64(covered)/float64(len(req.KeyPoints))*maxScore*10) / 10
	return result
}

func fallbackTutorAnswer(req dto.TutorRequest) dto.TutorAnswer {
	followUps := []string{}
	if req.Topic != "" {
		followUps = append(followUps, fmt.Sprintf("Which part of %s feels least clear right now?", req.Topic))
	}
	return dto.TutorAnswer{
		Answer:            defaultTutorAnswer + " " + fallbackTutorSuggest,
		FollowUpQuestions: followUps,
		References:        []string{},
	}
}

// lastResortLearningPlan salvages complete day objects or "Day N: title"
// lines from raw before giving up on the response. Title and overview
// recovered from partial are kept.
func lastResortLearningPlan(raw string, partial dto.LearningPlan, req dto.PlanRequest) dto.LearningPlan {
	plan := dto.LearningPlan{Title: partial.Title, Overview: partial.Overview, Days: []dto.PlanDay{}}

	for _, match := range flatObject.FindAllString(raw, -1) {
		var entry map[string]any
		if err := json.Unmarshal([]byte(match), &entry); err != nil {
			continue
		}
		day := coercePlanDay(llmjson.Object(entry))
		if day.Title == "" {
			continue
		}
		plan.Days = append(plan.Days, day)
	}

	if len(plan.Days) == 0 {
		for _, match := range dayLine.FindAllStringSubmatch(raw, -1) {
			n, _ := strconv.Atoi(match[1])
			plan.Days = append(plan.Days, dto.PlanDay{
				Day:        n,
				Title:      strings.TrimSpace(match[2]),
				Subtopics:  []string{},
				Objectives: []string{},
			})
		}
	}

	if len(plan.Days) == 0 {
		return fallbackLearningPlan(req)
	}
	numberPlanDays(plan.Days)
	return plan
}

func lastResortDetailedContent(raw string, req dto.SubtopicRequest) dto.DetailedContent {
	text := plainText(raw)
	if text == "" {
		return fallbackDetailedContent(req)
	}
	return dto.DetailedContent{
		Content:               text,
		KeyPoints:             []string{},
		Examples:              []string{},
		PracticalApplications: []string{},
	}
}

func lastResortQuizQuestions(raw string, req dto.QuizRequest) dto.QuizQuestionSet {
	set := dto.QuizQuestionSet{Questions: []dto.QuizQuestion{}}
	limit := quizCount(req.Count)
	for _, line := range strings.Split(plainText(raw), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "0123456789.)-*• \t"))
		if !strings.HasSuffix(line, "?") || len(line) < 8 {
			continue
		}
		set.Questions = append(set.Questions, dto.QuizQuestion{Question: line, Type: defaultQuestionType, Options: []string{}})
		if len(set.Questions) == limit {
			break
		}
	}
	if len(set.Questions) == 0 {
		return fallbackQuizQuestions(req)
	}
	return set
}

func lastResortGrading(raw string, req dto.GradeRequest) dto.GradingResult {
	match := scoreMention.FindStringSubmatch(raw)
	if match == nil {
		return fallbackGrading(req)
	}
	result := coerceGrading(llmjson.Object{"score": match[1]})
	if text := plainText(scoreMention.ReplaceAllString(raw, "")); text != "" {
		result.Feedback = text
	}
	return result
}

func lastResortTutorAnswer(raw string, req dto.TutorRequest) dto.TutorAnswer {
	text := plainText(raw)
	if text == "" {
		return fallbackTutorAnswer(req)
	}
	return dto.TutorAnswer{Answer: text, FollowUpQuestions: []string{}, References: []string{}}
}

// plainText strips JSON punctuation and key names from raw model output.
func plainText(raw string) string {
	text := jsonKey.ReplaceAllString(llmjson.Normalize(raw), "")
	text = syntaxRemover.Replace(text)

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		line = strings.Trim(line, ", ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func quizCount(count int) int {
	if count <= 0 {
		return defaultQuizCount
	}
	if count > maxQuizCount {
		return maxQuizCount
	}
	return count
}

func wordSet(text string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, word := range wordSplitter.Split(strings.ToLower(text), -1) {
		if len([]rune(word)) >= 4 {
			words[word] = struct{}{}
		}
	}
	return words
}

// mentions reports whether at least half of the significant words of point
// occur in answer.
func mentions(answer map[string]struct{}, point string) bool {
	words := wordSet(point)
	if len(words) == 0 {
		return false
	}
	hits := 0
	for word := range words {
		if _, ok := answer[word]; ok {
			hits++
		}
	}
	return hits*2 >= len(words)
}
