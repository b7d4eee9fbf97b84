package admins

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RouterFlash stores flash messages with the go-router flash helpers.
// Keys ending in "Fail" or equal to "fail" go to the error bucket.
type RouterFlash struct{}

func (RouterFlash) Flash(ctx router.Context, key, message string) router.Context {
	data := router.ViewContext{key: message}
	if isFailKey(key) {
		return flash.WithError(ctx, data)
	}
	return flash.WithSuccess(ctx, data)
}

func isFailKey(key string) bool {
	return key == FlashFail || strings.HasSuffix(key, "Fail")
}

// ProfileFromJWT reads the acting administrator from the session token
// the auth middleware stores in locals under contextKey.
func ProfileFromJWT(contextKey string) ProfileResolver {
	return func(ctx router.Context) Profile {
		raw := ctx.Locals(contextKey)
		if raw == nil {
			return Profile{}
		}

		token, ok := raw.(*jwt.Token)
		if !ok || token == nil {
			return Profile{}
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims == nil {
			return Profile{}
		}

		return profileFromClaims(claims)
	}
}

func profileFromClaims(claims jwt.MapClaims) Profile {
	p := Profile{ID: claimString(claims, "uid")}
	if p.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			p.ID = sub
		}
	}
	p.Username = claimString(claims, "username", "preferred_username", "name")
	p.Email = claimString(claims, "email")
	p.Role = claimString(claims, "role")
	return p
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
