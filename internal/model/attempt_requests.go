package model

// StartAttemptRequest begins or resumes an attempt. A registration number
// makes the attempt official; omitting it starts an informal practice test.
type StartAttemptRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"omitempty,min=4,max=32"`
}

// SelectAnswerRequest records a selection for one question slot.
type SelectAnswerRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"omitempty,min=4,max=32"`
	QuestionIndex      int    `json:"question_index" binding:"min=0"`
	OptionIndex        int    `json:"option_index" binding:"min=0,max=3"`
}

// ToggleReviewRequest flips the review mark for one question slot.
type ToggleReviewRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"omitempty,min=4,max=32"`
	QuestionIndex      int    `json:"question_index" binding:"min=0"`
}

// NavigateRequest moves the current question pointer.
type NavigateRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"omitempty,min=4,max=32"`
	QuestionIndex      int    `json:"question_index" binding:"min=0"`
}

// SubmitAttemptRequest finalizes an attempt on user confirmation.
type SubmitAttemptRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"omitempty,min=4,max=32"`
}
