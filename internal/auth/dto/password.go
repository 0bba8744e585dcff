package dto

type ChangePasswordInput struct {
	CurrentPassword    string `json:"current_password" form:"current_password"`
	NewPassword        string `json:"new_password" form:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password" form:"confirm_new_password"`
}

// RecoveryChangeInput changes a password through the security-question path.
// The grant token proves the answers were just verified.
type RecoveryChangeInput struct {
	GrantToken         string `json:"grant_token" form:"grant_token"`
	NewPassword        string `json:"new_password" form:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password" form:"confirm_new_password"`
}

type SecurityAnswersInput struct {
	Answer1 string `json:"security_answer_1" form:"security_answer_1"`
	Answer2 string `json:"security_answer_2" form:"security_answer_2"`
}
