// Package cookies устанавливает и очищает cookie с парой bearer-токенов.
// Оба токена доставляются как httpOnly secure cookie с SameSite=None,
// чтобы работать в кросс-доменном фронтенде.
package cookies

import (
	"net/http"
	"time"
)

// Имена cookie с токенами.
const (
	AccessToken  = "accessToken"
	RefreshToken = "refreshToken"
)

// SetTokenPair устанавливает cookie с access- и refresh-токенами.
// Срок жизни cookie совпадает со сроком жизни соответствующего токена.
func SetTokenPair(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, tokenCookie(AccessToken, access, accessTTL))
	http.SetCookie(w, tokenCookie(RefreshToken, refresh, refreshTTL))
}

// Clear очищает обе cookie с токенами.
func Clear(w http.ResponseWriter) {
	http.SetCookie(w, tokenCookie(AccessToken, "", -time.Hour))
	http.SetCookie(w, tokenCookie(RefreshToken, "", -time.Hour))
}

func tokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
