package models

import "time"

// Assignment is a numbered homework with its submission and self-evaluation windows.
type Assignment struct {
	Number    int        `gorm:"primaryKey;autoIncrement:false" json:"number"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	OpenDate  time.Time  `gorm:"not null" json:"open_date"`
	DueDate   time.Time  `gorm:"not null" json:"due_date"`
	EvalDate  time.Time  `gorm:"not null" json:"eval_date"`
	EvalItems []EvalItem `gorm:"foreignKey:AssignmentNumber;references:Number;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"eval_items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PointValue sums the relative values of the rubric.
func (a Assignment) PointValue() float64 {
	var total float64
	for _, item := range a.EvalItems {
		total += item.RelativeValue
	}
	return total
}
