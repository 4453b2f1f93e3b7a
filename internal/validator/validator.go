package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/TutorHub-2025/messaging-service/internal/models"
)

// Validator wraps go-playground/validator with the service's custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	validate := validator.New()

	// Custom rules; registration only fails for empty tags, safe to ignore
	_ = validate.RegisterValidation("conversation_type", validateConversationType)
	_ = validate.RegisterValidation("message_type", validateMessageType)
	_ = validate.RegisterValidation("user_role", validateUserRole)

	return &Validator{validate: validate}
}

// Validate validates any struct with validate tags; returns ValidationErrors
// on failure.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func validateConversationType(fl validator.FieldLevel) bool {
	switch models.ConversationType(fl.Field().String()) {
	case models.ConversationPrivate, models.ConversationGroup:
		return true
	}
	return false
}

func validateMessageType(fl validator.FieldLevel) bool {
	switch models.MessageType(fl.Field().String()) {
	case models.MessageText, models.MessageImage, models.MessageFile:
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleAdmin, models.RoleClient:
		return true
	}
	return false
}
