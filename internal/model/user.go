package model

import "time"

// User 后台管理员
type User struct {
	BaseStatus
	AuthProvider string     `gorm:"size:20;not null;default:local" json:"auth_provider"` // local or ldap
	Username     string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Password     string     `gorm:"size:255;not null" json:"-"` // 不返回到前端
	Email        *string    `gorm:"size:100" json:"email"`
	DisplayName  *string    `gorm:"size:100" json:"display_name"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
