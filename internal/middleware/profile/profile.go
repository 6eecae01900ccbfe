// Package profile identifies the client profile behind a request. The
// profile id lives in a long-lived cookie and is minted on first contact.
package profile

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const ContextKey = "profile"

type Config struct {
	CookieName string
	CookiePath string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName: "profile",
		CookiePath: "/",
		SameSite:   http.SameSiteLaxMode,
		MaxAge:     365 * 24 * time.Hour,
	}
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	skip := map[string]struct{}{}
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}

			id := readProfile(req, cfg.CookieName)
			if id == "" {
				id = uuid.NewString()
			}
			setCookie(c, cfg, id)
			c.Set(ContextKey, id)

			l := logging.FromContext(req.Context()).With("profile", id)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			return next(c)
		}
	}
}

// FromContext returns the profile id set by Middleware.
func FromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(ContextKey).(string)
	return id, ok && id != ""
}

// readProfile ignores cookies that are not a UUID so a tampered value
// gets a fresh profile instead of an arbitrary storage namespace.
func readProfile(req *http.Request, name string) string {
	ck, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(ck.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

func setCookie(c echo.Context, cfg Config, id string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    id,
		Path:     cfg.CookiePath,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: true,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		SameSite: cfg.SameSite,
	})
}
