//go:build race

package admins

import "golang.org/x/crypto/bcrypt"

func init() {
	PasswordHashCost = bcrypt.DefaultCost
}
