package models

type User struct {
	ID           int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"size:150;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	Admin        bool   `json:"admin" gorm:"not null;default:false"`
}
