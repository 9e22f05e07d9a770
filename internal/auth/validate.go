package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/learnhub/internal/api"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return PasswordAcceptable(fl.Field().String())
	})
	return v
}

type loginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerForm struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpw"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
	License  string `json:"license" validate:"omitempty,alphanum,max=64"`
}

type resetForm struct {
	Email string `json:"email" validate:"required,email"`
}

type resetConfirmForm struct {
	Token    string `json:"token" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpw"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
}

type passwordForm struct {
	Current  string `json:"current" validate:"required"`
	Password string `json:"password" validate:"required,strongpw"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
}

// check validates form and converts failures into an *api.ValidationError.
func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &api.ValidationError{Message: "Please correct the highlighted fields.", Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "alphanum":
		return "may only contain letters and digits"
	case "strongpw":
		return "is too weak: mix upper and lower case, digits and symbols"
	case "eqfield":
		return "does not match the password"
	}
	return "is invalid"
}
