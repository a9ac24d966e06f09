package model

import "time"

// Session is the authenticated identity held by the client.
type Session struct {
	UID          string `json:"uid"`
	Token        string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	Email        string `json:"email"`
}

// Role of a user record.
type Role string

const RoleUser = Role("user")

// User is the profile record kept by the API.
type User struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Photo     string    `json:"photo"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpsertResult is returned by POST /users. Message is set when the user already existed.
type UpsertResult struct {
	InsertedID string `json:"insertedId,omitempty"`
	Message    string `json:"message,omitempty"`
}
