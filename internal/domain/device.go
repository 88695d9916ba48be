package domain

// DeviceToken is a push-notification registration for one user device.
type DeviceToken struct {
	UserID    string
	Token     string
	Platform  string // "android" or "ios"
	CreatedAt int64
}
