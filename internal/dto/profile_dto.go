package dto

import "time"

// ProfileUpsertRequest is the payload for creating or replacing a learner profile.
type ProfileUpsertRequest struct {
	Qualification         string   `json:"qualification" validate:"omitempty,max=160"`
	Specialization        string   `json:"specialization" validate:"omitempty,max=160"`
	Profession            string   `json:"profession" validate:"omitempty,max=160"`
	IncludeCode           *bool    `json:"include_code"`
	PreferredExampleTypes []string `json:"preferred_example_types" validate:"omitempty,max=10,dive,max=64"`
	FocusAreas            []string `json:"focus_areas" validate:"omitempty,max=10,dive,max=64"`
}

// ProfileResponse serializes a learner profile.
type ProfileResponse struct {
	LearnerProfile
	UpdatedAt time.Time `json:"updated_at"`
}
