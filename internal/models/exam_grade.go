package models

import "time"

// ExamGrade records a user's points on a numbered exam.
type ExamGrade struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_exam_grades_user_number" json:"user_id"`
	Number    int       `gorm:"not null;uniqueIndex:idx_exam_grades_user_number" json:"number"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	Possible  int       `gorm:"not null;default:0" json:"possible"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PctString formats points over possible, or N/A when possible is zero.
func (e ExamGrade) PctString() string {
	return RatioString(float64(e.Points), float64(e.Possible))
}
