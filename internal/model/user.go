package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:用户标识" json:"id"`
	Username  string    `gorm:"size:255;not null;comment:用户名" json:"username"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:uq_users_email;comment:邮箱" json:"email"`
	Password  string    `gorm:"size:255;not null;comment:密码" json:"-"` // json:"-" 序列化时忽略密码
	Bio       string    `gorm:"type:text;comment:简介" json:"bio,omitempty"`
	Location  string    `gorm:"size:255;comment:所在地" json:"location,omitempty"`
	AvatarURL string    `gorm:"size:1024;comment:头像地址" json:"avatarUrl,omitempty"`
	Role      string    `gorm:"size:16;not null;default:'user';comment:用户角色" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
