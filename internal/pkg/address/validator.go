package address

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/pt"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pttranslations "github.com/go-playground/validator/v10/translations/pt"
)

var postalPattern = regexp.MustCompile(`^\d{4}-\d{3}$`)

// fieldMessages takes precedence over the generic translated messages.
var fieldMessages = map[string]map[string]string{
	"email": {
		"required": "E-mail inválido",
		"email":    "E-mail inválido",
	},
	"fullName": {"required": "Nome completo é obrigatório"},
	"nif": {
		"required": "NIF inválido",
		"pt_nif":   "NIF inválido",
	},
	"phone": {
		"required": "Telemóvel inválido (ex: 999999999)",
		"pt_phone": "Telemóvel inválido (ex: 999999999)",
	},
	"zipCode": {
		"required":  "Código Postal inválido (ex: 0000-000)",
		"pt_postal": "Código Postal inválido (ex: 0000-000)",
	},
	"address":      {"required": "Morada é obrigatória"},
	"number":       {"required": "Número é obrigatório"},
	"neighborhood": {"required": "Localidade é obrigatória"},
	"city":         {"required": "Cidade é obrigatória"},
	"state":        {"required": "Distrito é obrigatório"},
}

// ValidationErrors maps form field names to a Portuguese message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "invalid address: " + strings.Join(parts, "; ")
}

// First returns the message of the first invalid field in form order.
func (v ValidationErrors) First() string {
	for _, f := range formOrder {
		if msg, ok := v[f]; ok {
			return msg
		}
	}
	return ""
}

var formOrder = []string{"email", "fullName", "nif", "phone", "zipCode", "address", "number", "neighborhood", "city", "state"}

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	defaultValidator *Validator
	once             sync.Once
)

// Default returns the shared validator instance.
func Default() *Validator {
	once.Do(func() {
		defaultValidator = NewValidator()
	})
	return defaultValidator
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("pt_postal", func(fl validator.FieldLevel) bool {
		return postalPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("pt_nif", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return len(s) == 9 && isDigits(s)
	})
	_ = v.RegisterValidation("pt_phone", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return len(s) == 9 && isDigits(s)
	})

	locale := pt.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("pt")
	_ = pttranslations.RegisterDefaultTranslations(v, trans)

	return &Validator{validate: v, trans: trans}
}

// Validate checks the raw input. Required text fields are trimmed first, so
// whitespace-only values count as empty.
func (v *Validator) Validate(in Input) error {
	trimmed := in
	trimmed.Email = strings.TrimSpace(in.Email)
	trimmed.FullName = strings.TrimSpace(in.FullName)
	trimmed.NIF = strings.TrimSpace(in.NIF)
	trimmed.Phone = strings.TrimSpace(in.Phone)
	trimmed.ZipCode = strings.TrimSpace(in.ZipCode)
	trimmed.Address = strings.TrimSpace(in.Address)
	trimmed.Number = strings.TrimSpace(in.Number)
	trimmed.Neighborhood = strings.TrimSpace(in.Neighborhood)
	trimmed.City = strings.TrimSpace(in.City)
	trimmed.State = strings.TrimSpace(in.State)

	err := v.validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := ValidationErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msgs, ok := fieldMessages[field]; ok {
			if msg, ok := msgs[fe.Tag()]; ok {
				out[field] = msg
				continue
			}
		}
		out[field] = fe.Translate(v.trans)
	}
	return out
}

// Validate runs the shared validator.
func Validate(in Input) error {
	return Default().Validate(in)
}
