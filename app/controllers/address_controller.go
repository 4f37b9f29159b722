package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/address"
	"github.com/bewear-pt/storefront/internal/pkg/constants"
	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
	"github.com/bewear-pt/storefront/internal/pkg/viewmodel"
)

// AddressController manages the shipping addresses of the signed-in user and
// renders the identification step of the checkout.
type AddressController struct {
	addresses repository.ShippingAddressRepository
	carts     repository.CartRepository
}

func NewAddressController(repos *repository.Repositories) *AddressController {
	return &AddressController{addresses: repos.ShippingAddress, carts: repos.Cart}
}

// HandleIdentification lists the user's addresses next to the cart so one
// can be selected, created or edited.
func (ac *AddressController) HandleIdentification(c *fiber.Ctx) error {
	form := address.Input{}
	if editID := c.Query("edit"); editID != "" {
		existing, err := ac.addresses.GetByID(usercontext.GetUserID(c), editID)
		if err != nil {
			return toastError(c, repository.ErrAddressNotFound.Error(), constants.IdentificationPage)
		}
		form = address.FromModel(existing)
	}
	return ac.renderIdentification(c, fiber.StatusOK, form, nil)
}

func (ac *AddressController) renderIdentification(c *fiber.Ctx, status int, form address.Input, formErrors address.ValidationErrors) error {
	userID := usercontext.GetUserID(c)

	addresses, err := ac.addresses.ListByUser(userID)
	if err != nil {
		log.Errorf("[Address] Failed to list addresses of %d: %v", userID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Erro ao carregar moradas")
	}
	cart, err := ac.carts.GetOrCreate(userID)
	if err != nil {
		log.Errorf("[Address] Failed to load cart of %d: %v", userID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Erro ao carregar o carrinho")
	}

	var selected *models.ShippingAddress
	for i := range addresses {
		if cart.ShippingAddressID != nil && addresses[i].ID == *cart.ShippingAddressID {
			selected = &addresses[i]
		}
	}

	c.Status(status)
	return render(c, "cart/identification", "Identificação", fiber.Map{
		"Cart":      viewmodel.NewCart(cart, selected),
		"Addresses": addresses,
		"Form":      form,
		"Errors":    formErrors,
		"Editing":   form.ID != "",
	})
}

// parseAddress binds and validates the form. Field problems come back as
// ValidationErrors; err is only set when the body cannot be parsed.
func parseAddress(c *fiber.Ctx) (address.Input, address.ValidationErrors, error) {
	var in address.Input
	if err := c.BodyParser(&in); err != nil {
		return in, nil, err
	}
	if err := address.Validate(in); err != nil {
		var verrs address.ValidationErrors
		if errors.As(err, &verrs) {
			return in, verrs, nil
		}
		return in, nil, err
	}
	return in, nil, nil
}

// HandleCreate stores a new address and selects it for the cart.
func (ac *AddressController) HandleCreate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return redirectToLogin(c)
	}

	in, verrs, err := parseAddress(c)
	if err != nil {
		return toastError(c, "Pedido inválido.", constants.IdentificationPage)
	}
	in.ID = ""
	if verrs != nil {
		return ac.renderIdentification(c, fiber.StatusUnprocessableEntity, in, verrs)
	}

	var model models.ShippingAddress
	address.Normalize(in).Apply(&model)
	if err := ac.addresses.Create(userID, &model); err != nil {
		log.Errorf("[Address] Failed to create address for %d: %v", userID, err)
		return toastError(c, "Erro ao guardar morada.", constants.IdentificationPage)
	}
	if err := ac.carts.SetShippingAddress(userID, model.ID); err != nil {
		log.Warnf("[Address] Failed to select new address %s: %v", model.ID, err)
	}

	return toastSuccess(c, "Morada adicionada com sucesso!", constants.IdentificationPage)
}

// HandleUpdate changes an address owned by the user.
func (ac *AddressController) HandleUpdate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return redirectToLogin(c)
	}

	in, verrs, err := parseAddress(c)
	if err != nil {
		return toastError(c, "Pedido inválido.", constants.IdentificationPage)
	}
	in.ID = c.Params("id")
	if verrs != nil {
		return ac.renderIdentification(c, fiber.StatusUnprocessableEntity, in, verrs)
	}

	model := models.ShippingAddress{ID: c.Params("id")}
	address.Normalize(in).Apply(&model)
	if err := ac.addresses.Update(userID, &model); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return toastError(c, repository.ErrAddressNotFound.Error(), constants.IdentificationPage)
		}
		log.Errorf("[Address] Failed to update address %s: %v", model.ID, err)
		return toastError(c, "Erro ao atualizar morada.", constants.IdentificationPage)
	}

	return toastSuccess(c, "Morada atualizada com sucesso!", constants.IdentificationPage)
}

// HandleDelete removes an address owned by the user.
func (ac *AddressController) HandleDelete(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return redirectToLogin(c)
	}

	if err := ac.addresses.Delete(userID, c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return toastError(c, repository.ErrAddressNotFound.Error(), constants.IdentificationPage)
		}
		log.Errorf("[Address] Failed to delete address %s: %v", c.Params("id"), err)
		return toastError(c, "Erro ao eliminar morada.", constants.IdentificationPage)
	}

	return toastSuccess(c, "Morada eliminada com sucesso!", constants.IdentificationPage)
}
