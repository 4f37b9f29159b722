package session

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/bewear-pt/storefront/internal/pkg/cache"
	"github.com/bewear-pt/storefront/internal/pkg/env"
)

// Redis databases: 0 holds the cache and job queue, 1 the customer sessions
// and 2 the OAuth state kept by goth.
const (
	CustomerDB = 1
	OAuthDB    = 2

	keyUserID   = "user_id"
	keyUsername = "username"
)

// ErrNoStore is returned when no session store was installed.
var ErrNoStore = errors.New("session store not initialised")

var store *session.Store

// RedisStorage opens a fiber storage on the Redis server of the shared cache
// client, using database db.
func RedisStorage(db int) *redis.Storage {
	host, port := "localhost", 6379
	username, password := "", env.GetEnv("CACHE_PASSWORD", "")
	if client := cache.GetClient(); client != nil {
		opts := client.Options()
		if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		username = opts.Username
		if opts.Password != "" {
			password = opts.Password
		}
	}
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Database: db,
	})
}

// NewSessionStore installs and returns the Redis backed customer session store.
func NewSessionStore() *session.Store {
	store = session.New(session.Config{
		Storage:        RedisStorage(CustomerDB),
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:session_id",
	})
	return store
}

// SetSessionStore replaces the installed store. Tests use an in-memory store.
func SetSessionStore(s *session.Store) {
	store = s
}

func GetSessionStore() *session.Store {
	return store
}

// Login starts a fresh session for the customer. The session id is rotated
// so a pre-login cookie cannot be reused.
func Login(c *fiber.Ctx, userID uint, name string) error {
	if store == nil {
		return ErrNoStore
	}
	sess, err := store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("regenerate session: %w", err)
	}
	sess.Set(keyUserID, userID)
	sess.Set(keyUsername, name)
	return sess.Save()
}

// Logout destroys the customer session, if any.
func Logout(c *fiber.Ctx) error {
	if store == nil {
		return ErrNoStore
	}
	sess, err := store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return sess.Destroy()
}

// Customer reads the signed-in customer from the session. ok is false for
// anonymous visitors.
func Customer(c *fiber.Ctx) (userID uint, name string, ok bool, err error) {
	if store == nil {
		return 0, "", false, nil
	}
	sess, err := store.Get(c)
	if err != nil {
		return 0, "", false, fmt.Errorf("load session: %w", err)
	}
	userID, _ = sess.Get(keyUserID).(uint)
	if userID == 0 {
		return 0, "", false, nil
	}
	name, _ = sess.Get(keyUsername).(string)
	return userID, name, true, nil
}
