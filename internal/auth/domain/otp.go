package domain

// OtpChallenge is a pending one-time code, keyed by the email it was sent
// to. The store expires it passively, there is no issued-at bookkeeping.
type OtpChallenge struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
	Code   string `json:"code"`
}
