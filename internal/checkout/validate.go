package checkout

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Field string

const (
	FieldName          Field = "name"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldAddress       Field = "address"
	FieldCity          Field = "city"
	FieldZip           Field = "zip"
	FieldCountry       Field = "country"
	FieldPaymentMethod Field = "paymentMethod"
)

var requiredFields = []Field{FieldName, FieldEmail, FieldPhone, FieldAddress, FieldCity, FieldZip, FieldCountry}

const (
	MsgRequired      = "This field is required"
	MsgInvalidEmail  = "Please enter a valid email"
	MsgInvalidPhone  = "Please enter a valid phone number"
	MsgSelectPayment = "Please select a payment method"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
)

var PaymentMethods = []models.PaymentMethod{models.PaymentCredit, models.PaymentPayPal}

type Form struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Zip           string `json:"zip"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"`
}

func (f Form) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldAddress:
		return f.Address
	case FieldCity:
		return f.City
	case FieldZip:
		return f.Zip
	case FieldCountry:
		return f.Country
	case FieldPaymentMethod:
		return f.PaymentMethod
	}
	return ""
}

func (f Form) Customer() models.Customer {
	return models.Customer{
		Name:    f.Name,
		Email:   f.Email,
		Phone:   f.Phone,
		Address: f.Address,
		City:    f.City,
		Zip:     f.Zip,
		Country: f.Country,
	}
}

// FieldErrors maps a field to its message; an empty map means the form is valid.
type FieldErrors map[Field]string

// ValidateField checks one field the way the form does on every change.
// It returns "" when the value is acceptable.
func ValidateField(field Field, value string) string {
	if field == FieldPaymentMethod {
		if !slices.Contains(PaymentMethods, models.PaymentMethod(value)) {
			return MsgSelectPayment
		}
		return ""
	}

	if slices.Contains(requiredFields, field) && strings.TrimSpace(value) == "" {
		return MsgRequired
	}
	switch field {
	case FieldEmail:
		if !emailPattern.MatchString(value) {
			return MsgInvalidEmail
		}
	case FieldPhone:
		if !phonePattern.MatchString(value) {
			return MsgInvalidPhone
		}
	}
	return ""
}

func Validate(f Form) FieldErrors {
	errs := FieldErrors{}
	for _, field := range append(slices.Clone(requiredFields), FieldPaymentMethod) {
		if msg := ValidateField(field, f.Value(field)); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}
