package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/session"
)

// OAuthController signs users in through an external provider.
type OAuthController struct {
	users repository.UserRepository
}

func NewOAuthController(users repository.UserRepository) *OAuthController {
	return &OAuthController{users: users}
}

func (oc *OAuthController) HandleBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleCallback completes the provider flow and logs the user in
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	gu, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warnf("[OAuth] Provider flow failed: %v", err)
		return toastError(c, "Não foi possível entrar com a conta externa.", "/login")
	}

	user, err := oc.findOrCreate(gu)
	if err != nil {
		log.Errorf("[OAuth] Failed to link %s user %s: %v", gu.Provider, gu.UserID, err)
		return toastError(c, "Não foi possível entrar com a conta externa.", "/login")
	}

	if err := session.Login(c, user.ID, user.Name); err != nil {
		log.Errorf("[OAuth] Failed to start session: %v", err)
		return toastError(c, "Ocorreu um erro. Tente novamente.", "/login")
	}
	if err := oc.users.TouchLastLogin(user.ID); err != nil {
		log.Warnf("[OAuth] Failed to update last login of %d: %v", user.ID, err)
	}
	return toastSuccess(c, "Sessão iniciada com sucesso!", "/")
}

// findOrCreate matches the provider account first, then the email.
func (oc *OAuthController) findOrCreate(gu goth.User) (*models.User, error) {
	user, err := oc.users.GetByProvider(gu.Provider, gu.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := normalizeEmail(gu.Email)
	if email == "" {
		email = fmt.Sprintf("%s_%s@%s.oauth.local", gu.Provider, gu.UserID, gu.Provider)
	}

	user, err = oc.users.GetByEmail(email)
	switch {
	case err == nil:
		user.Provider = gu.Provider
		user.ProviderUserID = gu.UserID
		return user, oc.users.Update(user)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	user = &models.User{
		Name:           firstNonEmpty(gu.Name, gu.NickName, gu.Email, "Cliente"),
		Email:          email,
		Provider:       gu.Provider,
		ProviderUserID: gu.UserID,
	}
	return user, oc.users.Create(user)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
