package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/pkg"
)

const (
	csrfCookieName = "_csrf_token"
	csrfFormField  = "_csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfContextKey = "CSRFToken"
)

// CSRF protects dashboard form submissions with a signed double-submit
// cookie. Tokens look like hex(nonce) + "." + base64url(HMAC-SHA256(nonce)).
//
// Safe methods issue a token when the cookie is missing or forged and expose
// it to templates through GetCSRFToken. Unsafe methods must echo the cookie in
// the "_csrf_token" form field or the X-CSRF-Token header, which the layout
// sets on every htmx request.
func CSRF(secret string, secure bool) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		panic("middleware: csrf secret is required")
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			token, err := c.Cookie(csrfCookieName)
			if err != nil || !validToken(token, secret) {
				if token, err = generateToken(secret); err != nil {
					c.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				http.SetCookie(c.Writer, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(csrfContextKey, token)
			c.Next()
			return
		}

		cookieToken, err := c.Cookie(csrfCookieName)
		requestToken := c.GetHeader(csrfHeaderName)
		if requestToken == "" {
			requestToken = c.PostForm(csrfFormField)
		}
		if err != nil || requestToken == "" ||
			!validToken(cookieToken, secret) ||
			subtle.ConstantTimeCompare([]byte(cookieToken), []byte(requestToken)) != 1 {
			rejectCSRF(c)
			return
		}

		c.Set(csrfContextKey, cookieToken)
		c.Next()
	}
}

func rejectCSRF(c *gin.Context) {
	const msg = "Your form has expired. Reload the page and try again."
	if pkg.IsHTMX(c) {
		pkg.NoSwap(c)
		pkg.Toast(c, pkg.ToastError, msg)
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, pkg.Envelope{Success: false, Message: msg})
}

// GetCSRFToken returns the token stored by CSRF, or "".
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}

func generateToken(secret string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	n := hex.EncodeToString(nonce)
	return n + "." + signNonce(n, secret), nil
}

func signNonce(nonce, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validToken(token, secret string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sig), []byte(signNonce(nonce, secret))) == 1
}
