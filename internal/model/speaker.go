package model

import "time"

// SpeakerLevel grades a speaker's experience.
type SpeakerLevel string

const (
	SpeakerRegular     SpeakerLevel = "REGULAR"
	SpeakerExperienced SpeakerLevel = "EXPERIENCED"
	SpeakerExpert      SpeakerLevel = "EXPERT"
	SpeakerKeynote     SpeakerLevel = "KEYNOTE"
)

// Speaker presents sessions and accumulates ratings from attendees.
type Speaker struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Bio            string       `json:"bio"`
	Company        string       `json:"company"`
	Specialization string       `json:"specialization"`
	PhoneNumber    string       `json:"phone_number"`
	LinkedinURL    string       `json:"linkedin_url"`
	TwitterHandle  string       `json:"twitter_handle"`
	WebsiteURL     string       `json:"website_url"`
	PhotoURL       string       `json:"photo_url"`
	SpeakerLevel   SpeakerLevel `json:"speaker_level"`
	IsFeatured     bool         `json:"is_featured"`
	AverageRating  float64      `json:"average_rating"`
	TotalRatings   int          `json:"total_ratings"`
	Deleted        bool         `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// AddRating folds a new rating into the running mean. Ratings outside [1,5]
// are rejected with ErrInvalidRating.
func (s *Speaker) AddRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	total := s.AverageRating*float64(s.TotalRatings) + float64(rating)
	s.TotalRatings++
	s.AverageRating = total / float64(s.TotalRatings)
	return nil
}
