package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the access roles the gateway encodes into its tokens.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleHRManager UserRole = "HR_MANAGER"
	RoleStaff     UserRole = "STAFF"
)

// JWTClaims is the payload of the gateway-issued access token. The gateway
// owns authentication; this service only verifies the shared-secret signature
// and reads the identity claims.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
