package market

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// newValidator 建立以 form tag 作為欄位名稱的 validator
func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

// validateForm 將 validator 的錯誤轉換為 FormError
func validateForm(validate *validator.Validate, form any) *FormError {
	formErr := &FormError{}
	err := validate.Struct(form)
	if err == nil {
		return formErr
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		formErr.Add("__all__", err.Error())
		return formErr
	}
	for _, fieldErr := range validationErrors {
		formErr.Add(fieldErr.Field(), fieldMessage(fieldErr))
	}
	return formErr
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fieldErr.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	}
	return fmt.Sprintf("Enter a valid value (%s).", fieldErr.Tag())
}

// sanitize 移除使用者輸入中不安全的 HTML
func sanitize(policy *bluemonday.Policy, input string) string {
	return strings.TrimSpace(policy.Sanitize(input))
}
