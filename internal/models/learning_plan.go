package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanDay is one day of a stored curriculum.
type PlanDay struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Subtopics  []string `json:"subtopics"`
	Objectives []string `json:"objectives"`
}

// LearningPlan is a generated curriculum owned by a user.
type LearningPlan struct {
	ID           uint              `gorm:"primaryKey"`
	PublicID     string            `gorm:"size:36;uniqueIndex;not null"`
	UserID       uint              `gorm:"index;not null"`
	Topic        string            `gorm:"size:255;not null"`
	Level        string            `gorm:"size:32"`
	DailyTime    string            `gorm:"size:64"`
	DurationDays int               `gorm:"not null"`
	Title        string            `gorm:"size:255"`
	Overview     string            `gorm:"type:text"`
	DaysRaw      datatypes.JSON    `gorm:"column:days;type:json"`
	Progress     []PlanDayProgress `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Days         []PlanDay `gorm:"-"`
}

// BeforeSave serialises plan days.
func (p *LearningPlan) BeforeSave(tx *gorm.DB) error {
	days := p.Days
	if days == nil {
		days = []PlanDay{}
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return err
	}
	p.DaysRaw = datatypes.JSON(raw)
	return nil
}

// AfterFind hydrates plan days after loading from DB.
func (p *LearningPlan) AfterFind(tx *gorm.DB) error {
	p.Days = []PlanDay{}
	if len(p.DaysRaw) == 0 {
		return nil
	}
	return json.Unmarshal(p.DaysRaw, &p.Days)
}

// PlanDayProgress tracks completion of a single plan day.
type PlanDayProgress struct {
	ID          uint `gorm:"primaryKey"`
	PlanID      uint `gorm:"uniqueIndex:idx_plan_day;not null"`
	Day         int  `gorm:"uniqueIndex:idx_plan_day;not null"`
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
