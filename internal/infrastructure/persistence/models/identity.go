package models

import (
	"github.com/pharmacare/backend/internal/domain/identity"
)

// UserModel is the persistence model for staff accounts
type UserModel struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	DisplayName  string `gorm:"type:varchar(200)"`
	Role         string `gorm:"type:varchar(32);not null"`
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		DisplayName:  m.DisplayName,
		Role:         identity.Role(m.Role),
		Active:       m.Active,
	}
}

// FromDomain populates the persistence model from a domain User entity
func (m *UserModel) FromDomain(user *identity.User) {
	m.FromDomainBaseEntity(user.BaseEntity)
	m.Username = user.Username
	m.PasswordHash = user.PasswordHash
	m.DisplayName = user.DisplayName
	m.Role = user.Role.String()
	m.Active = user.Active
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(user *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(user)
	return m
}
