package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	hasNumber  = regexp.MustCompile(`[0-9]`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasSpecial = regexp.MustCompile(`[!@#$%^&*]`)
)

// maxMoney граница NUMERIC(20, 2): не более 18 цифр до запятой
var maxMoney = decimal.New(1, 18)

// isMoney проверяет, что сумма помещается в NUMERIC(20, 2) без округления
func isMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThan(maxMoney)
}

// NewValidator создает валидатор DTO с поддержкой decimal и правилами money и password
func NewValidator() *validator.Validate {
	validate := validator.New()

	// decimal.Decimal проверяется как число, чтобы работали gt/gte/lt
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Сумма: не больше двух знаков после запятой. Поле читается из родителя,
	// потому что fl.Field() уже приведено к float64
	validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		field := reflect.Indirect(fl.Parent()).FieldByName(fl.StructFieldName())
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		d, ok := field.Interface().(decimal.Decimal)
		return ok && isMoney(d)
	})

	// Пароль: цифра, заглавная, строчная буква и спецсимвол
	validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		return hasNumber.MatchString(password) &&
			hasUpper.MatchString(password) &&
			hasLower.MatchString(password) &&
			hasSpecial.MatchString(password)
	})

	return validate
}

// validateStruct проверяет DTO и переводит ошибки валидатора в ValidationError
func validateStruct(validate *validator.Validate, dto interface{}) error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return validationError("некорректные данные запроса: %v", err)
	}

	var messages []string
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			messages = append(messages, "поле "+field+" обязательно")
		case "gt":
			messages = append(messages, "поле "+field+" должно быть больше "+e.Param())
		case "min":
			messages = append(messages, "поле "+field+" должно быть не короче "+e.Param())
		case "max":
			messages = append(messages, "поле "+field+" должно быть не длиннее "+e.Param())
		case "email":
			messages = append(messages, "поле "+field+" должно быть корректным email")
		case "oneof":
			messages = append(messages, "поле "+field+" должно быть одним из: "+e.Param())
		case "money":
			messages = append(messages, "поле "+field+" должно быть суммой не более чем с двумя знаками после запятой")
		case "lte":
			messages = append(messages, "поле "+field+" должно быть не больше "+e.Param())
		case "password":
			messages = append(messages, "поле "+field+" должно содержать цифру, заглавную и строчную буквы и спецсимвол")
		default:
			messages = append(messages, "поле "+field+" не прошло проверку "+e.Tag())
		}
	}
	return validationError("%s", strings.Join(messages, "; "))
}
