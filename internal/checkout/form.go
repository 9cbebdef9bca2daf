package checkout

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Field names in form order. Validation errors and the scroll target use these keys.
const (
	FieldEmail      = "email"
	FieldFullName   = "fullName"
	FieldAddress    = "address"
	FieldCity       = "city"
	FieldState      = "state"
	FieldZip        = "zip"
	FieldCardName   = "cardName"
	FieldCardNumber = "cardNumber"
	FieldCardExpiry = "cardExpiry"
	FieldCardCVC    = "cardCvc"
)

var formFields = []string{
	FieldEmail, FieldFullName, FieldAddress, FieldCity, FieldState, FieldZip,
	FieldCardName, FieldCardNumber, FieldCardExpiry, FieldCardCVC,
}

// Form is the contact, shipping and payment form. Card fields are only checked lexically; they
// are never stored or charged.
type Form struct {
	Email      string `json:"email" validate:"filled,email_address"`
	FullName   string `json:"fullName" validate:"filled"`
	Address    string `json:"address" validate:"filled"`
	City       string `json:"city" validate:"filled"`
	State      string `json:"state" validate:"filled"`
	Zip        string `json:"zip" validate:"filled,zip_code"`
	CardName   string `json:"cardName" validate:"filled"`
	CardNumber string `json:"cardNumber" validate:"filled,card_number"`
	CardExpiry string `json:"cardExpiry" validate:"filled,card_expiry"`
	CardCVC    string `json:"cardCvc" validate:"filled,card_cvc"`
}

// FieldErrors maps a field name to its single error message.
type FieldErrors map[string]string

// Valid reports whether no field has an error.
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

// Clear drops the error for field, as happens when the user edits it.
func (fe FieldErrors) Clear(field string) {
	delete(fe, field)
}

// First returns the first invalid field in form order, or "".
func (fe FieldErrors) First() string {
	for _, field := range formFields {
		if _, ok := fe[field]; ok {
			return field
		}
	}
	return ""
}

var (
	emailPattern      = regexp.MustCompile(`^[^\s\p{Z}\x{FEFF}]+@[^\s\p{Z}\x{FEFF}]+\.[^\s\p{Z}\x{FEFF}]+$`)
	zipPattern        = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cardExpiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cardCVCPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

var messages = map[string]string{
	"filled":        "This field is required",
	"email_address": "Please enter a valid email address",
	"zip_code":      "Please enter a valid ZIP code",
	"card_number":   "Please enter a valid 16-digit card number",
	"card_expiry":   "Please use MM/YY format",
	"card_cvc":      "Please enter a valid CVC/CVV",
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	register := func(tag string, fn func(string) bool) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	register("filled", func(s string) bool { return strings.TrimFunc(s, isSpace) != "" })
	register("email_address", emailPattern.MatchString)
	register("zip_code", zipPattern.MatchString)
	register("card_number", func(s string) bool {
		return cardNumberPattern.MatchString(stripSpaces(s))
	})
	register("card_expiry", cardExpiryPattern.MatchString)
	register("card_cvc", cardCVCPattern.MatchString)
	return v
}

// stripSpaces drops every Unicode space, including no-break and zero-width no-break spaces.
func stripSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), "")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || r == '\uFEFF'
}

// Validate checks every field and returns at most one message per invalid field. The required
// check runs before the format check. The result is empty when the form is valid.
func Validate(form Form) FieldErrors {
	errs := FieldErrors{}
	err := formValidator.Struct(form)
	if err == nil {
		return errs
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		panic(err)
	}
	for _, fieldErr := range validationErrs {
		if _, seen := errs[fieldErr.Field()]; seen {
			continue
		}
		errs[fieldErr.Field()] = messages[fieldErr.Tag()]
	}
	return errs
}
