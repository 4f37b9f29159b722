package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Operation ids as listed in docs/openapi.yml.
const (
	OperationGetPing       = "getPing"
	OperationListAddresses = "listAddresses"
	OperationDeleteAddress = "deleteAddress"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// (GET /addresses)
	ListAddresses(c *fiber.Ctx) error
	// (DELETE /addresses/{id})
	DeleteAddress(c *fiber.Ctx, id string) error
}

// ServerInterfaceWrapper converts path parameters before calling the handlers.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (siw *ServerInterfaceWrapper) GetPing(c *fiber.Ctx) error {
	return siw.Handler.GetPing(c)
}

func (siw *ServerInterfaceWrapper) ListAddresses(c *fiber.Ctx) error {
	return siw.Handler.ListAddresses(c)
}

func (siw *ServerInterfaceWrapper) DeleteAddress(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "bad_request", Message: "id missing"})
	}
	return siw.Handler.DeleteAddress(c, id)
}

// FiberServerOptions adds per-operation middlewares.
type FiberServerOptions struct {
	Middlewares map[string]fiber.Handler
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, FiberServerOptions{})
}

// RegisterHandlersWithOptions registers every operation with its middleware, if any.
func RegisterHandlersWithOptions(router fiber.Router, si ServerInterface, options FiberServerOptions) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	handlers := func(operation string, h fiber.Handler) []fiber.Handler {
		if mw, ok := options.Middlewares[operation]; ok && mw != nil {
			return []fiber.Handler{mw, h}
		}
		return []fiber.Handler{h}
	}

	router.Get("/ping", handlers(OperationGetPing, wrapper.GetPing)...)
	router.Get("/addresses", handlers(OperationListAddresses, wrapper.ListAddresses)...)
	router.Delete("/addresses/:id", handlers(OperationDeleteAddress, wrapper.DeleteAddress)...)
}
