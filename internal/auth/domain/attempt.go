package domain

import "time"

// DeviceInfo is the descriptor derived from a raw user-agent string.
type DeviceInfo struct {
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OS             string `json:"os"`
	DeviceType     string `json:"device_type"`
	Mobile         bool   `json:"mobile"`
}

// LoginAttempt is a snapshot of a single login event, embedded on the
// account rather than stored as its own collection.
type LoginAttempt struct {
	Timestamp time.Time  `json:"timestamp"`
	Success   bool       `json:"success"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
	Device    DeviceInfo `json:"device"`
}

// AttemptRing is the account's two-slot login history. Push discards the old
// previous slot, moves the last attempt into it, and stores the new attempt
// as last. The previous slot therefore always holds exactly what last held
// before the most recent Push.
type AttemptRing struct {
	Last     *LoginAttempt
	Previous *LoginAttempt
}

func (r *AttemptRing) Push(a *LoginAttempt) {
	r.Previous = r.Last
	r.Last = a
}
