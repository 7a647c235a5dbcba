package models

import "time"

// User is an identity record. PasswordHash never leaves the server.
type User struct {
	ID           string    `bson:"_id,omitempty"     gorm:"primaryKey;size:64"                 json:"id"`
	Email        string    `bson:"email"             gorm:"uniqueIndex;size:255;not null"      json:"email"`
	Name         string    `bson:"name"              gorm:"size:255;not null"                  json:"name"`
	PasswordHash string    `bson:"passwordHash"      gorm:"size:255;not null"                  json:"-"`
	Role         string    `bson:"role"              gorm:"size:20;not null;default:user"      json:"role"`
	Address      *Address  `bson:"address,omitempty" gorm:"serializer:json"                    json:"address,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"         json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"         json:"updatedAt"`
}

// Address is the user's saved delivery address.
type Address struct {
	Street  string `bson:"street"  json:"street"`
	City    string `bson:"city"    json:"city"`
	State   string `bson:"state"   json:"state"`
	Zip     string `bson:"zip"     json:"zip"`
	Country string `bson:"country" json:"country"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
