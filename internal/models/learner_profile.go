package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// LearnerProfile stores the personalisation preferences of a user.
type LearnerProfile struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          uint   `gorm:"uniqueIndex;not null"`
	Qualification   string `gorm:"size:160"`
	Specialization  string `gorm:"size:160"`
	Profession      string `gorm:"size:160"`
	IncludeCode     bool
	ExampleTypesRaw string `gorm:"column:example_types;type:text"`
	FocusAreasRaw   string `gorm:"column:focus_areas;type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExampleTypes    []string `gorm:"-"`
	FocusAreas      []string `gorm:"-"`
}

// BeforeSave encodes the list columns.
func (p *LearnerProfile) BeforeSave(tx *gorm.DB) error {
	p.ExampleTypesRaw = encodeList(p.ExampleTypes)
	p.FocusAreasRaw = encodeList(p.FocusAreas)
	return nil
}

// AfterFind decodes the list columns.
func (p *LearnerProfile) AfterFind(tx *gorm.DB) error {
	p.ExampleTypes = decodeList(p.ExampleTypesRaw)
	p.FocusAreas = decodeList(p.FocusAreasRaw)
	return nil
}

func encodeList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeList(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		items = append(items, trimmed)
	}
	return items
}
