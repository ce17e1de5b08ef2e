package auth

// Config holds process wide provisioning options
type Config interface {
	// GetFixedRumToken returns the RUM token shared by every new
	// OAuth2 user, empty means generate one per user.
	GetFixedRumToken() string
}
