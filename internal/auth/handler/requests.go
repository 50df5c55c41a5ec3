package handler

import (
	"campusvoice/internal/auth"
	"campusvoice/internal/domain"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type demoRequest struct {
	Role string `json:"role"`
}

type assignRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// ProfileResponse is the wire shape of a directory profile. Strike counts are
// included so the client can warn a student nearing the reveal threshold.
type ProfileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Strikes     int    `json:"strikes"`
}

type SessionResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}

func toProfileResponse(p domain.UserProfile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Role:        string(p.Role),
		Strikes:     p.Strikes,
	}
}

func toSessionResponse(s auth.Session) SessionResponse {
	return SessionResponse{
		Token:   s.Token,
		Profile: toProfileResponse(s.Profile),
	}
}
