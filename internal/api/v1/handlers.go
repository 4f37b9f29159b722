package apiv1

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
)

// APIServer implements the ServerInterface
type APIServer struct {
	addresses repository.ShippingAddressRepository
}

// NewAPIServer creates a new API server instance
func NewAPIServer(addresses repository.ShippingAddressRepository) *APIServer {
	return &APIServer{addresses: addresses}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// ListAddresses returns the shipping addresses of the session user, newest first.
func (s *APIServer) ListAddresses(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return unauthorized(c)
	}
	rows, err := s.addresses.ListByUser(userID)
	if err != nil {
		log.Errorf("[API] Failed to list addresses of %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(Error{Error: "internal_error"})
	}
	out := AddressList{Addresses: make([]Address, 0, len(rows))}
	for i := range rows {
		out.Addresses = append(out.Addresses, toAddress(&rows[i]))
	}
	return c.JSON(out)
}

// DeleteAddress removes an address of the session user. Foreign ids are reported as not found.
func (s *APIServer) DeleteAddress(c *fiber.Ctx, id string) error {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return unauthorized(c)
	}
	if err := s.addresses.Delete(userID, id); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(Error{Error: "not_found", Message: err.Error()})
		}
		log.Errorf("[API] Failed to delete address %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(Error{Error: "internal_error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(Error{Error: "unauthorized", Message: "É necessário iniciar sessão"})
}

func toAddress(a *models.ShippingAddress) Address {
	return Address{
		ID:           a.ID,
		FullName:     a.RecipientName,
		Email:        a.Email,
		Phone:        a.Phone,
		NIF:          a.TaxID,
		ZipCode:      a.ZipCode,
		Address:      a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		Country:      a.Country,
		CreatedAt:    a.CreatedAt,
	}
}
