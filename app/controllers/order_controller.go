package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/constants"
	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
)

// OrderController serves the "my orders" pages.
type OrderController struct {
	orders repository.OrderRepository
	carts  repository.CartRepository
}

func NewOrderController(repos *repository.Repositories) *OrderController {
	return &OrderController{orders: repos.Order, carts: repos.Cart}
}

func (oc *OrderController) HandleMyOrders(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	orders, err := oc.orders.ListByUser(userID)
	if err != nil {
		log.Errorf("[Order] Failed to list orders of %d: %v", userID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Erro ao carregar encomendas")
	}
	return render(c, "orders/index", "As minhas encomendas", fiber.Map{
		"Orders": orders,
	})
}

// HandleRepeat puts the items of a past order back into the cart.
func (oc *OrderController) HandleRepeat(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if err := oc.carts.AddOrderItems(userID, c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return toastError(c, "Encomenda não encontrada.", constants.MyOrdersRoute)
		}
		log.Errorf("[Order] Failed to repeat order %s: %v", c.Params("id"), err)
		return toastError(c, "Erro ao repetir a encomenda.", constants.MyOrdersRoute)
	}
	return toastSuccess(c, "Artigos adicionados ao carrinho!", constants.CartRoute)
}

// HandleCancel cancels a pending order. Paid orders cannot be canceled here.
func (oc *OrderController) HandleCancel(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if err := oc.orders.Cancel(userID, c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return toastError(c, "Só é possível cancelar encomendas pendentes.", constants.MyOrdersRoute)
		}
		log.Errorf("[Order] Failed to cancel order %s: %v", c.Params("id"), err)
		return toastError(c, "Erro ao cancelar a encomenda.", constants.MyOrdersRoute)
	}
	return toastSuccess(c, "Encomenda cancelada.", constants.MyOrdersRoute)
}
