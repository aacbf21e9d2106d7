// Package registration validates and submits the administrator sign-up form.
package registration

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"contesthub/internal/model"
	pkgerrors "contesthub/pkg/errors"
	"contesthub/pkg/utils/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// FormKey holds form-level messages in FieldErrors.
const FormKey = "form"

const (
	msgUsernameTaken = "Username already exists"
	msgMismatch      = "Passwords do not match"
	msgServerFailed  = "An error occurred during registration"
	msgNoResponse    = "No response received from the server. Please try again later."
	msgSetupFailed   = "An error occurred during registration. Please try again."
)

var requiredMessages = map[string]string{
	"username":        "Username is required",
	"email":           "Email is required",
	"pinCode":         "Pin code is required",
	"password":        "Password is required",
	"confirmPassword": "Confirm password is required",
}

// Form is the sign-up form as entered.
type Form struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PinCode         string `json:"pinCode" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// FieldErrors maps a field's json name, or FormKey, to its message.
// An empty map means the form was accepted.
type FieldErrors map[string]string

// AdminAPI is the part of the judge API sign-up needs.
type AdminAPI interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	AddAdmin(ctx context.Context, req model.AdminRegistration) (model.AddAdminResult, error)
}

type Registrar struct {
	api      AdminAPI
	validate *validator.Validate
}

func NewRegistrar(api AdminAPI) *Registrar {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Registrar{api: api, validate: v}
}

// Validate checks the form locally, without any network call.
func (r *Registrar) Validate(form Form) FieldErrors {
	errs := FieldErrors{}
	if err := r.validate.Struct(form); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs[fe.Field()] = fieldMessage(fe)
			}
		} else {
			errs[FormKey] = err.Error()
		}
	}
	if form.Password != "" && form.Password != form.ConfirmPassword {
		errs["confirmPassword"] = msgMismatch
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email format"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// Register validates the form, checks the username is free and submits it.
// Any problem comes back as a message in FieldErrors, never as an error.
func (r *Registrar) Register(ctx context.Context, form Form) FieldErrors {
	errs := r.Validate(form)

	if form.Username != "" {
		exists, err := r.api.UsernameExists(ctx, form.Username)
		switch {
		case err != nil:
			logger.Warn(ctx, "username pre-check failed", zap.String("username", form.Username), zap.Error(err))
		case exists:
			errs["username"] = msgUsernameTaken
		}
	}
	if len(errs) > 0 {
		return errs
	}

	result, err := r.api.AddAdmin(ctx, model.AdminRegistration{
		Username: form.Username,
		Password: form.Password,
		Email:    form.Email,
		PinCode:  form.PinCode,
	})
	if err != nil {
		logger.Warn(ctx, "admin registration failed", zap.String("username", form.Username), zap.Error(err))
		return FieldErrors{FormKey: formMessage(err)}
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = msgServerFailed
		}
		return FieldErrors{FormKey: msg}
	}
	logger.Info(ctx, "admin registered", zap.String("username", form.Username))
	return FieldErrors{}
}

func formMessage(err error) string {
	switch pkgerrors.GetCode(err) {
	case pkgerrors.ServerRejected:
		e := pkgerrors.GetError(err)
		text, _ := e.Detail("message").(string)
		if text == "" {
			text, _ = e.Detail("statusText").(string)
		}
		return "Registration failed: " + text
	case pkgerrors.TransportFailed:
		return msgNoResponse
	default:
		return msgSetupFailed
	}
}
