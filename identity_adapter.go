package auth

// UserInfo is the public view of a provisioned user. Password
// material never leaves the service.
type UserInfo struct {
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Role       UserRole `json:"role"`
	Org        string   `json:"org"`
	Token      string   `json:"token"`
	RumToken   string   `json:"rum_token,omitempty"`
	IsExternal bool     `json:"is_external"`
}

// NewUserInfo returns the public view for user
func NewUserInfo(user *User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		Org:        user.Org,
		Token:      user.Token,
		RumToken:   user.GetRumToken(),
		IsExternal: user.IsExternal,
	}
}
