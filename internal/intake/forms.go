package intake

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IntakeForm is the INTRO screen payload. Location is optional.
type IntakeForm struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Experience string `json:"experience" validate:"required"`
	Position   string `json:"position" validate:"required"`
	Location   string `json:"location"`
}

func (f IntakeForm) info() CandidateInfo {
	return CandidateInfo{
		FieldName:       f.Name,
		FieldEmail:      f.Email,
		FieldPhone:      f.Phone,
		FieldExperience: f.Experience,
		FieldPosition:   f.Position,
		FieldLocation:   f.Location,
	}
}

// TechStackForm is the TECH_STACK screen payload.
type TechStackForm struct {
	TechStack string `json:"tech_stack" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkForm reports the json names of empty required fields, or nil.
func checkForm(form any, message string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields, Message: message}
}
