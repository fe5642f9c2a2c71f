package models

type Subscriber struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

type SubscriptionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
