package dto

type RegisterInput struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`

	// Question fields default to the portal's fixed set when omitted.
	SecurityQuestion1 string `json:"security_question_1" form:"security_question_1"`
	SecurityAnswer1   string `json:"security_answer_1" form:"security_answer_1"`
	SecurityQuestion2 string `json:"security_question_2" form:"security_question_2"`
	SecurityAnswer2   string `json:"security_answer_2" form:"security_answer_2"`
}
