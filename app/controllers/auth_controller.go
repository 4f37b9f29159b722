package controllers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/hcaptcha"
	"github.com/bewear-pt/storefront/internal/pkg/session"
	"github.com/bewear-pt/storefront/internal/pkg/usercontext"
)

const loginFailedMessage = "E-mail ou palavra-passe inválidos."

// AuthController handles local sign-up, sign-in and sign-out.
type AuthController struct {
	users     repository.UserRepository
	captcha   *hcaptcha.Verifier
	providers []string
}

func NewAuthController(users repository.UserRepository, captcha *hcaptcha.Verifier) *AuthController {
	return &AuthController{users: users, captcha: captcha}
}

// WithProviders lists the external sign-in buttons shown on the login page.
func (ac *AuthController) WithProviders(providers ...string) *AuthController {
	ac.providers = providers
	return ac
}

func (ac *AuthController) HandleLoginPage(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect(safeNext(c.Query("next")), fiber.StatusSeeOther)
	}
	return render(c, "auth/login", "Entrar", fiber.Map{
		"Next":      safeNext(c.Query("next")),
		"Providers": ac.providers,
	})
}

func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	next := safeNext(c.FormValue("next"))
	loginURL := "/login?next=" + url.QueryEscape(next)

	user, err := ac.users.GetByEmail(c.FormValue("email"))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("[Auth] Failed to load user: %v", err)
		}
		return toastError(c, loginFailedMessage, loginURL)
	}
	if !user.CheckPassword(c.FormValue("password")) {
		return toastError(c, loginFailedMessage, loginURL)
	}

	if err := session.Login(c, user.ID, user.Name); err != nil {
		log.Errorf("[Auth] Failed to start session: %v", err)
		return toastError(c, "Ocorreu um erro. Tente novamente.", loginURL)
	}
	if err := ac.users.TouchLastLogin(user.ID); err != nil {
		log.Warnf("[Auth] Failed to update last login of %d: %v", user.ID, err)
	}

	return toastSuccess(c, "Sessão iniciada com sucesso!", next)
}

func (ac *AuthController) HandleRegisterPage(c *fiber.Ctx) error {
	siteKey := ""
	if ac.captcha.Enabled() {
		siteKey = ac.captcha.SiteKey
	}
	return render(c, "auth/register", "Criar conta", fiber.Map{"HCaptchaSiteKey": siteKey})
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	if err := ac.captcha.Verify(c.UserContext(), c.FormValue("h-captcha-response")); err != nil {
		log.Warnf("[Auth] Captcha rejected: %v", err)
		return toastError(c, "Falha na verificação do captcha. Tente novamente.", "/register")
	}

	user, err := models.CreateUser(c.FormValue("name"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, models.ErrPasswordTooShort) {
			return toastError(c, "A palavra-passe deve ter pelo menos 8 caracteres.", "/register")
		}
		return toastError(c, "Verifique o nome e o e-mail.", "/register")
	}

	if err := ac.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return toastError(c, "Já existe uma conta com este e-mail.", "/register")
		}
		log.Errorf("[Auth] Failed to create user: %v", err)
		return toastError(c, "Ocorreu um erro. Tente novamente.", "/register")
	}

	return toastSuccess(c, "Conta criada! Já pode iniciar sessão.", "/login")
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := session.Logout(c); err != nil {
		log.Warnf("[Auth] Failed to end session: %v", err)
	}
	usercontext.Set(c, usercontext.Anonymous())
	return toastSuccess(c, "Sessão terminada. Até breve!", "/login")
}

// normalizeEmail mirrors how users are stored.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
