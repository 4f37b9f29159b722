package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/constants"
	"github.com/bewear-pt/storefront/internal/pkg/payment"
	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
	"github.com/bewear-pt/storefront/internal/pkg/viewmodel"
)

const maxItemQuantity = 99

// CartController handles the cart, the shipping address selection and the
// hand-over to the hosted checkout.
type CartController struct {
	repos    *repository.Repositories
	checkout payment.CheckoutCreator
	baseURL  string
}

// NewCartController wires the cart. checkout may be nil when Stripe is not
// configured; finishing an order then fails with a toast.
func NewCartController(repos *repository.Repositories, checkout payment.CheckoutCreator, baseURL string) *CartController {
	return &CartController{repos: repos, checkout: checkout, baseURL: strings.TrimRight(baseURL, "/")}
}

func (cc *CartController) HandleShow(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	cart, err := cc.repos.Cart.GetOrCreate(userID)
	if err != nil {
		log.Errorf("[Cart] Failed to load cart of %d: %v", userID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Erro ao carregar o carrinho")
	}

	var selected *models.ShippingAddress
	if cart.ShippingAddressID != nil {
		if a, err := cc.repos.ShippingAddress.GetByID(userID, *cart.ShippingAddressID); err == nil {
			selected = a
		}
	}

	return render(c, "cart/show", "Carrinho", fiber.Map{
		"Cart": viewmodel.NewCart(cart, selected),
	})
}

// HandleAddItem adds a variant to the cart, merging with an existing line.
func (cc *CartController) HandleAddItem(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	quantity := 1
	if q := strings.TrimSpace(c.FormValue("quantity")); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			n = 0
		}
		quantity = n
	}
	if quantity < 1 || quantity > maxItemQuantity {
		return toastError(c, "Quantidade inválida.", constants.CartRoute)
	}

	err := cc.repos.Cart.AddItem(userID, c.FormValue("productVariantId"), quantity)
	if err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			return toastError(c, "Produto não encontrado.", constants.PublicRoute)
		}
		log.Errorf("[Cart] Failed to add item for %d: %v", userID, err)
		return toastError(c, "Erro ao adicionar ao carrinho.", constants.CartRoute)
	}
	return toastSuccess(c, "Produto adicionado ao carrinho!", constants.CartRoute)
}

func (cc *CartController) HandleDecreaseItem(c *fiber.Ctx) error {
	return cc.changeItem(c, cc.repos.Cart.DecreaseItem)
}

func (cc *CartController) HandleRemoveItem(c *fiber.Ctx) error {
	return cc.changeItem(c, cc.repos.Cart.RemoveItem)
}

func (cc *CartController) changeItem(c *fiber.Ctx, change func(userID uint, itemID string) error) error {
	userID := usercontext.GetUserID(c)
	if err := change(userID, c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return toastError(c, "Artigo não encontrado no carrinho.", constants.CartRoute)
		}
		log.Errorf("[Cart] Failed to change item %s: %v", c.Params("id"), err)
		return toastError(c, "Erro ao atualizar o carrinho.", constants.CartRoute)
	}
	return c.Redirect(constants.CartRoute, fiber.StatusSeeOther)
}

// HandleSetShippingAddress selects one of the user's addresses for the cart.
func (cc *CartController) HandleSetShippingAddress(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return redirectToLogin(c)
	}

	addressID := strings.TrimSpace(c.FormValue("shippingAddressId"))
	if addressID == "" {
		return toastError(c, "Selecione uma morada de entrega.", constants.IdentificationPage)
	}
	if err := cc.repos.Cart.SetShippingAddress(userID, addressID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return toastError(c, repository.ErrAddressNotFound.Error(), constants.IdentificationPage)
		}
		log.Errorf("[Cart] Failed to set shipping address for %d: %v", userID, err)
		return toastError(c, "Erro ao selecionar a morada.", constants.IdentificationPage)
	}
	return c.Redirect(constants.CartRoute, fiber.StatusSeeOther)
}

// HandleFinish turns the cart into a pending order and redirects to the
// hosted checkout. The order id travels in the session metadata.
func (cc *CartController) HandleFinish(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return redirectToLogin(c)
	}
	if cc.checkout == nil {
		return toastError(c, "Pagamentos indisponíveis de momento.", constants.CartRoute)
	}

	created, err := cc.repos.Order.CreateFromCart(userID)
	switch {
	case errors.Is(err, repository.ErrCartEmpty):
		return toastError(c, "O carrinho está vazio.", constants.CartRoute)
	case errors.Is(err, repository.ErrShippingAddressMissing):
		return toastError(c, "Selecione uma morada de entrega.", constants.IdentificationPage)
	case err != nil:
		log.Errorf("[Cart] Failed to create order for %d: %v", userID, err)
		return toastError(c, "Erro ao finalizar a encomenda.", constants.CartRoute)
	}

	order, err := cc.repos.Order.GetOwned(userID, created.ID)
	if err != nil {
		log.Errorf("[Cart] Failed to reload order %s: %v", created.ID, err)
		return toastError(c, "Erro ao finalizar a encomenda.", constants.MyOrdersRoute)
	}

	successURL := cc.baseURL + constants.CheckoutSuccess + "?order=" + order.ID
	cancelURL := cc.baseURL + constants.MyOrdersRoute
	checkoutURL, err := cc.checkout.CreateCheckoutSession(c.UserContext(), order, successURL, cancelURL)
	if err != nil {
		log.Errorf("[Cart] Failed to create checkout session for order %s: %v", order.ID, err)
		return toastError(c, "Erro ao iniciar o pagamento.", constants.MyOrdersRoute)
	}

	log.Infof("[Cart] Order %s created, redirecting to checkout", order.ID)
	return c.Redirect(checkoutURL, fiber.StatusSeeOther)
}

func (cc *CartController) HandleCheckoutSuccess(c *fiber.Ctx) error {
	return render(c, "cart/success", "Encomenda recebida", fiber.Map{
		"OrderID": c.Query("order"),
	})
}
