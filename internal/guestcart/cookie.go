package guestcart

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const cookieMaxAge = 30 * 24 * time.Hour

// CookieStorage persists entries as base64url cookies on the current request
// and response.
type CookieStorage struct {
	c       echo.Context
	secure  bool
	written map[string]string
}

func NewCookieStorage(c echo.Context, secure bool) *CookieStorage {
	return &CookieStorage{c: c, secure: secure, written: make(map[string]string)}
}

func (s *CookieStorage) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		return v, v != ""
	}
	ck, err := s.c.Cookie(key)
	if err != nil || ck.Value == "" {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func (s *CookieStorage) Set(key, value string) error {
	s.written[key] = value

	ck := &http.Cookie{
		Name:     key,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" || value == "[]" {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	} else {
		ck.Value = base64.RawURLEncoding.EncodeToString([]byte(value))
		ck.MaxAge = int(cookieMaxAge.Seconds())
		ck.Expires = time.Now().Add(cookieMaxAge)
	}
	s.c.SetCookie(ck)
	return nil
}
