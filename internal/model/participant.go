package model

import "time"

// Participant is a person who can register for events and sessions.
type Participant struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Company          string    `json:"company"`
	Position         string    `json:"position"`
	RegistrationDate time.Time `json:"registration_date"`
	IsActive         bool      `json:"is_active"`
}

// FullName returns the participant's display name.
func (p *Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}
