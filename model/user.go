package model

import "time"

const DefaultAvatar = "https://picsum.photos/200"

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `gorm:"not null;uniqueIndex;size:191" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
}

func (User) TableName() string {
	return "user"
}
