package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/constants"
)

func newAddressApp(repos *repository.Repositories, userID uint) *fiber.App {
	app := newTestApp(userID)
	ac := NewAddressController(repos)
	app.Get(constants.IdentificationPage, ac.HandleIdentification)
	app.Post("/addresses", ac.HandleCreate)
	app.Post("/addresses/:id/update", ac.HandleUpdate)
	app.Post("/addresses/:id/delete", ac.HandleDelete)
	return app
}

func TestAddressCreate_NormalizesAndSelects(t *testing.T) {
	repos := repository.NewRepositories(newTestDB(t))
	app := newAddressApp(repos, 1)

	resp := postForm(t, app, "/addresses", validAddressForm())
	assert.Equal(t, constants.IdentificationPage, resp.Header.Get(fiber.HeaderLocation))

	list, err := repos.ShippingAddress.ListByUser(1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1100-053", list[0].ZipCode)
	assert.Equal(t, "Maria@Example.pt", list[0].Email)
	assert.Equal(t, "Portugal", list[0].Country)
	assert.Equal(t, "2º Esq", list[0].ComplementValue())

	cart, err := repos.Cart.GetOrCreate(1)
	require.NoError(t, err)
	require.NotNil(t, cart.ShippingAddressID)
	assert.Equal(t, list[0].ID, *cart.ShippingAddressID)
}

func TestAddressCreate_InvalidRerendersForm(t *testing.T) {
	repos := repository.NewRepositories(newTestDB(t))
	app := newAddressApp(repos, 1)

	form := validAddressForm()
	form.Set("zipCode", "1100")
	form.Set("nif", "12345")

	resp := postForm(t, app, "/addresses", form)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Código Postal inválido (ex: 0000-000)")
	assert.Contains(t, body, "NIF inválido")
	assert.Contains(t, body, `value="Maria Silva"`)

	list, err := repos.ShippingAddress.ListByUser(1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddressUpdate_OnlyOwner(t *testing.T) {
	repos := repository.NewRepositories(newTestDB(t))
	theirs := seedAddress(t, repos, 2)

	form := validAddressForm()
	form.Set("city", "Porto")
	postForm(t, newAddressApp(repos, 1), "/addresses/"+theirs.ID+"/update", form)

	stored, err := repos.ShippingAddress.GetByID(2, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lisboa", stored.City)

	resp := postForm(t, newAddressApp(repos, 2), "/addresses/"+theirs.ID+"/update", form)
	assert.Equal(t, constants.IdentificationPage, resp.Header.Get(fiber.HeaderLocation))

	stored, err = repos.ShippingAddress.GetByID(2, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Porto", stored.City)
}

func TestAddressDelete_OnlyOwner(t *testing.T) {
	repos := repository.NewRepositories(newTestDB(t))
	theirs := seedAddress(t, repos, 2)

	postForm(t, newAddressApp(repos, 1), "/addresses/"+theirs.ID+"/delete", nil)
	_, err := repos.ShippingAddress.GetByID(2, theirs.ID)
	require.NoError(t, err)

	postForm(t, newAddressApp(repos, 2), "/addresses/"+theirs.ID+"/delete", nil)
	_, err = repos.ShippingAddress.GetByID(2, theirs.ID)
	assert.ErrorIs(t, err, repository.ErrAddressNotFound)
}

func TestIdentification_PrefillsEditForm(t *testing.T) {
	repos := repository.NewRepositories(newTestDB(t))
	mine := seedAddress(t, repos, 1)

	resp := get(t, newAddressApp(repos, 1), constants.IdentificationPage+"?edit="+mine.ID)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "/addresses/"+mine.ID+"/update")
	assert.Contains(t, body, `value="1100-053"`)
}

func TestAddressCreate_AnonymousRedirectsToLogin(t *testing.T) {
	repos := repository.NewRepositories(newTestDB(t))

	resp := postForm(t, newAddressApp(repos, 0), "/addresses", validAddressForm())
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderLocation), "/login?next=")
}
