package domain

// GuestRateLimitStatus is derived from the persisted guest counter each time
// it is requested; it is never stored.
type GuestRateLimitStatus struct {
	Count       int     `json:"count"`
	Remaining   int     `json:"remaining"`
	CanSend     bool    `json:"canSend"`
	MaxMessages int     `json:"maxMessages"`
	WindowHours float64 `json:"windowHours"`
}

// GuestStatusResponse is the guest-mode payload of the guest-status endpoint.
// Authenticated callers get a minimal payload without the allowance fields,
// since no limit applies to them.
type GuestStatusResponse struct {
	IsGuestMode       bool    `json:"isGuestMode"`
	GuestMessageCount int     `json:"guestMessageCount"`
	RemainingMessages int     `json:"remainingMessages"`
	CanSendMessage    bool    `json:"canSendMessage"`
	MaxMessages       int     `json:"maxMessages"`
	WindowHours       float64 `json:"windowHours,omitempty"`
}
