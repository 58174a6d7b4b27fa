package models

import "time"

type Game struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title    string    `json:"title" gorm:"size:255;not null"`
	Body     string    `json:"body" gorm:"type:text"`
	Tipoff   string    `json:"tipoff" gorm:"size:64;index"`
	AuthorID int64     `json:"author_id" gorm:"not null;index"`
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Created  time.Time `json:"created" gorm:"autoCreateTime"`
}

// AuthorName is empty when the author was not loaded with the record.
func (g Game) AuthorName() string {
	if g.Author == nil {
		return ""
	}
	return g.Author.Username
}
