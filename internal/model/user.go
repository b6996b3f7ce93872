package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Role      UserRole  `gorm:"size:20;default:'student'" json:"role"`
	XP        int       `gorm:"default:0" json:"xp"` // 总经验值，由已完成任务的奖励累计
	Language  string    `gorm:"size:10;default:'es'" json:"language"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
