package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/constants"
)

func newOrderApp(repos *repository.Repositories, userID uint) *fiber.App {
	app := newTestApp(userID)
	oc := NewOrderController(repos)
	app.Get(constants.MyOrdersRoute, oc.HandleMyOrders)
	app.Post("/my-orders/:id/repeat", oc.HandleRepeat)
	app.Post("/my-orders/:id/cancel", oc.HandleCancel)
	return app
}

func seedOrder(t *testing.T, repos *repository.Repositories, variant *models.ProductVariant, userID uint) *models.Order {
	t.Helper()
	addr := seedAddress(t, repos, userID)
	require.NoError(t, repos.Cart.AddItem(userID, variant.ID, 2))
	require.NoError(t, repos.Cart.SetShippingAddress(userID, addr.ID))
	order, err := repos.Order.CreateFromCart(userID)
	require.NoError(t, err)
	return order
}

func TestMyOrders_ListsOwnOrders(t *testing.T) {
	db := newTestDB(t)
	repos := repository.NewRepositories(db)
	variant := seedVariant(t, db)
	mine := seedOrder(t, repos, variant, 1)
	theirs := seedOrder(t, repos, variant, 2)

	resp := get(t, newOrderApp(repos, 1), constants.MyOrdersRoute)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, mine.ID)
	assert.NotContains(t, body, theirs.ID)
	assert.Contains(t, body, "Camisola Básica - Azul")
	assert.Contains(t, body, "39,80")
}

func TestCancelOrder(t *testing.T) {
	db := newTestDB(t)
	repos := repository.NewRepositories(db)
	variant := seedVariant(t, db)
	order := seedOrder(t, repos, variant, 1)

	postForm(t, newOrderApp(repos, 2), "/my-orders/"+order.ID+"/cancel", nil)
	stored, err := repos.Order.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)

	resp := postForm(t, newOrderApp(repos, 1), "/my-orders/"+order.ID+"/cancel", nil)
	assert.Equal(t, constants.MyOrdersRoute, resp.Header.Get(fiber.HeaderLocation))
	stored, err = repos.Order.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, stored.Status)
}

func TestRepeatOrder_RefillsCart(t *testing.T) {
	db := newTestDB(t)
	repos := repository.NewRepositories(db)
	variant := seedVariant(t, db)
	order := seedOrder(t, repos, variant, 1)

	resp := postForm(t, newOrderApp(repos, 1), "/my-orders/"+order.ID+"/repeat", nil)
	assert.Equal(t, constants.CartRoute, resp.Header.Get(fiber.HeaderLocation))

	cart, err := repos.Cart.GetOrCreate(1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}
