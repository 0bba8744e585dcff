package dto

type LoginInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResult is returned on successful authentication. LastLoginSummary
// describes the attempt that preceded this one, captured before the tracker
// overwrote it.
type LoginResult struct {
	AccountID        string
	Username         string
	LastLoginSummary string
}
