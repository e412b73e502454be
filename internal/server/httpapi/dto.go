package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/dmitrijs2005/projecthub/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type signupRequest struct {
	Email     string `json:"email" validate:"required,email,max=30"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"firstName" validate:"required,max=30"`
	LastName  string `json:"lastName" validate:"required,max=30"`
	Admin     bool   `json:"admin"`
}

func (r signupRequest) input() services.SignupInput {
	return services.SignupInput{
		Email:     strings.TrimSpace(r.Email),
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Admin:     r.Admin,
	}
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"confirmationCode" validate:"required,max=16"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email,max=30"`
	Password string `json:"password" validate:"required,min=8"`
}

// nullableString tells an absent JSON field from an explicit null.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

type updateUserRequest struct {
	FirstName *string        `json:"firstName" validate:"omitempty,min=1,max=30"`
	LastName  *string        `json:"lastName" validate:"omitempty,min=1,max=30"`
	Email     *string        `json:"email" validate:"omitempty,email,max=30"`
	ProjectID nullableString `json:"project" validate:"-"`
}

func (r updateUserRequest) input() (services.UpdateUserInput, error) {
	in := services.UpdateUserInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
	if r.ProjectID.Set {
		if r.ProjectID.Value == nil {
			in.ClearProject = true
		} else {
			if _, err := uuid.Parse(*r.ProjectID.Value); err != nil {
				return in, common.NewStatusError(common.ErrorBadRequest, "project must be a valid UUID")
			}
			in.ProjectID = r.ProjectID.Value
		}
	}
	return in, nil
}

type projectResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userResponse struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Email     string           `json:"email"`
	Roles     []models.Role    `json:"userRoles"`
	Active    bool             `json:"active"`
	Project   *projectResponse `json:"project"`
}

func toUserResponse(u *models.User) userResponse {
	roles := u.Roles
	if roles == nil {
		roles = []models.Role{}
	}
	resp := userResponse{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Roles:     roles,
		Active:    u.Active,
	}
	if u.Project != nil {
		resp.Project = &projectResponse{ID: u.Project.ID, Name: u.Project.Name}
	}
	return resp
}

func toUserResponses(users []*models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

type signupResponse struct {
	Status                 models.AuthStatus         `json:"status"`
	Message                string                    `json:"message"`
	UserVerificationStatus models.VerificationStatus `json:"userVerificationStatus"`
}

// Validator wraps validator/v10 with the password rule and JSON field names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
	return &Validator{v: v}
}

// strongPassword requires eight or more characters with a lower case
// letter, an upper case letter, a digit and a symbol.
func strongPassword(s string) bool {
	if len([]rune(s)) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, c := range s {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		case !unicode.IsSpace(c) && c != '_' && !unicode.IsLetter(c):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// Struct validates v and returns a BadRequest StatusError naming the
// offending fields.
func (val *Validator) Struct(v any) error {
	err := val.v.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return common.NewStatusError(common.ErrorBadRequest, "Invalid request")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return common.NewStatusError(common.ErrorBadRequest, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "password":
		return fmt.Sprintf("%s must be at least 8 characters with upper and lower case letters, a digit and a symbol", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
