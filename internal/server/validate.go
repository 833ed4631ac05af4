package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/njchilds90/algebra"
)

var validate = validator.New()

func init() {
	if err := validate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return algebra.ValidVariable(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// describeValidation turns validator errors into one client-facing line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "ident":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid variable name", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
