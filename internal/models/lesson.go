package models

import (
	"time"

	"gorm.io/datatypes"
)

// LessonContent stores generated lesson content for a plan subtopic.
type LessonContent struct {
	ID           uint           `gorm:"primaryKey"`
	PlanID       uint           `gorm:"uniqueIndex:idx_lesson_subtopic;not null"`
	Day          int            `gorm:"uniqueIndex:idx_lesson_subtopic;not null"`
	Subtopic     string         `gorm:"size:255;uniqueIndex:idx_lesson_subtopic;not null"`
	Content      string         `gorm:"type:text"`
	KeyPoints    datatypes.JSON `gorm:"type:json"`
	Examples     datatypes.JSON `gorm:"type:json"`
	Applications datatypes.JSON `gorm:"type:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QuizAttempt stores a graded theory answer.
type QuizAttempt struct {
	ID        uint              `gorm:"primaryKey"`
	PlanID    uint              `gorm:"index;not null"`
	UserID    uint              `gorm:"index;not null"`
	Day       int               `gorm:"not null"`
	Subtopic  string            `gorm:"size:255"`
	Question  string            `gorm:"type:text;not null"`
	Answer    string            `gorm:"type:text;not null"`
	Score     float64           `gorm:"not null"`
	Feedback  string            `gorm:"type:text"`
	Details   datatypes.JSONMap `gorm:"type:json"`
	CreatedAt time.Time
}

// TutorExchange stores a tutor question and the generated answer.
type TutorExchange struct {
	ID         uint           `gorm:"primaryKey"`
	PlanID     uint           `gorm:"index;not null"`
	UserID     uint           `gorm:"index;not null"`
	Day        int
	Question   string         `gorm:"type:text;not null"`
	Answer     string         `gorm:"type:text"`
	FollowUps  datatypes.JSON `gorm:"type:json"`
	References datatypes.JSON `gorm:"type:json"`
	CreatedAt  time.Time
}
