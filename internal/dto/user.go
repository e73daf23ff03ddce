package dto

type UpdateUserRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
