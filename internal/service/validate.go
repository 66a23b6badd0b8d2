package service

import (
	"reflect"
	"strings"

	"quest_reward_backend/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// validate shares gin's `binding` tags so requests built outside HTTP are
// held to the same rules.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			return util.NewValidationError("%s failed on '%s=%s'", field, fe.Tag(), fe.Param())
		}
		return util.NewValidationError("%s failed on '%s'", field, fe.Tag())
	}
	return util.NewValidationError("%s", err.Error())
}
