package address

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bewear-pt/storefront/app/models"
)

func validInput() Input {
	return Input{
		Email:        "maria@example.pt",
		FullName:     "Maria Silva",
		NIF:          "123456789",
		Phone:        "912345678",
		ZipCode:      "1100-053",
		Address:      "Rua Augusta",
		Number:       "10",
		Neighborhood: "Baixa",
		City:         "Lisboa",
		State:        "Lisboa",
	}
}

func TestValidate_AcceptsValidInput(t *testing.T) {
	assert.NoError(t, Validate(validInput()))
}

func TestValidate_FieldMessages(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
		field  string
		msg    string
	}{
		{"bad email", func(i *Input) { i.Email = "not-an-email" }, "email", "E-mail inválido"},
		{"empty name", func(i *Input) { i.FullName = "   " }, "fullName", "Nome completo é obrigatório"},
		{"short nif", func(i *Input) { i.NIF = "12345678" }, "nif", "NIF inválido"},
		{"long nif", func(i *Input) { i.NIF = "1234567890" }, "nif", "NIF inválido"},
		{"nif with letters", func(i *Input) { i.NIF = "12345678a" }, "nif", "NIF inválido"},
		{"short phone", func(i *Input) { i.Phone = "91234567" }, "phone", "Telemóvel inválido (ex: 999999999)"},
		{"phone with spaces", func(i *Input) { i.Phone = "912 345 67" }, "phone", "Telemóvel inválido (ex: 999999999)"},
		{"postal without dash", func(i *Input) { i.ZipCode = "1100053" }, "zipCode", "Código Postal inválido (ex: 0000-000)"},
		{"postal wrong shape", func(i *Input) { i.ZipCode = "110-0053" }, "zipCode", "Código Postal inválido (ex: 0000-000)"},
		{"empty street", func(i *Input) { i.Address = "" }, "address", "Morada é obrigatória"},
		{"empty number", func(i *Input) { i.Number = " " }, "number", "Número é obrigatório"},
		{"empty neighborhood", func(i *Input) { i.Neighborhood = "" }, "neighborhood", "Localidade é obrigatória"},
		{"empty city", func(i *Input) { i.City = "" }, "city", "Cidade é obrigatória"},
		{"empty state", func(i *Input) { i.State = "" }, "state", "Distrito é obrigatório"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			err := Validate(in)
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tc.msg, verrs[tc.field])
			assert.Len(t, verrs, 1)
		})
	}
}

func TestValidate_ComplementIsOptional(t *testing.T) {
	in := validInput()
	in.Complement = ""
	assert.NoError(t, Validate(in))
}

func TestValidationErrors_First(t *testing.T) {
	verrs := ValidationErrors{"city": "Cidade é obrigatória", "nif": "NIF inválido"}
	assert.Equal(t, "NIF inválido", verrs.First())
}

func TestMaskPostalCode(t *testing.T) {
	assert.Equal(t, "1234-567", MaskPostalCode("1234567"))
	assert.Equal(t, "1234-567", MaskPostalCode("1234-567"))
	assert.Equal(t, "1234-567", MaskPostalCode(" 1234 567 "))
	assert.Equal(t, "12345", MaskPostalCode("12345"))
	assert.Equal(t, "", MaskPostalCode(""))
}

func TestMaskPostalCode_Idempotent(t *testing.T) {
	for _, code := range []string{"0000-000", "1100-053", "4000-322", "9999-999"} {
		once := MaskPostalCode(OnlyDigits(code))
		assert.Equal(t, code, once)
		assert.Equal(t, once, MaskPostalCode(OnlyDigits(once)))
	}
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "123456789", OnlyDigits("123.456.789"))
	assert.Equal(t, "", OnlyDigits("abc"))
}

func TestNormalize(t *testing.T) {
	in := validInput()
	in.FullName = "  Maria Silva "
	in.NIF = "123 456 789"
	in.Phone = "912-345-678"
	in.ZipCode = "1100053"
	in.Email = " Maria@Example.PT "
	in.Complement = "  "

	n := Normalize(in)

	assert.Equal(t, "Maria Silva", n.RecipientName)
	assert.Equal(t, "123456789", n.TaxID)
	assert.Equal(t, "912345678", n.Phone)
	assert.Equal(t, "1100-053", n.ZipCode)
	assert.Equal(t, "Maria@Example.PT", n.Email, "email is stored as typed")
	assert.Equal(t, models.DefaultCountry, n.Country)
	assert.Nil(t, n.Complement)

	in.Complement = " 2º Esq "
	n = Normalize(in)
	require.NotNil(t, n.Complement)
	assert.Equal(t, "2º Esq", *n.Complement)
}

func TestNormalize_ApplyAndFromModel(t *testing.T) {
	var a models.ShippingAddress
	Normalize(validInput()).Apply(&a)

	assert.Equal(t, "Rua Augusta", a.Street)
	assert.Equal(t, "Portugal", a.Country)

	back := FromModel(&a)
	assert.Equal(t, "Maria Silva", back.FullName)
	assert.Equal(t, "1100-053", back.ZipCode)
	assert.NoError(t, Validate(back))
}

func TestFormat(t *testing.T) {
	a := models.ShippingAddress{
		RecipientName: "Maria Silva",
		Street:        "Rua Augusta",
		Number:        "10",
		Neighborhood:  "Baixa",
		City:          "Lisboa",
		State:         "Lisboa",
		ZipCode:       "1100-053",
	}
	assert.Equal(t, "Maria Silva\nRua Augusta, 10, Baixa\nLisboa, Lisboa\n1100-053", Format(a))

	c := "2º Esq"
	a.Complement = &c
	assert.Equal(t, "Maria Silva\nRua Augusta, 10 2º Esq, Baixa\nLisboa, Lisboa\n1100-053", Format(a))
}
