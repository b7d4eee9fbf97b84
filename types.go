package admins

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-router"
)

// Logger is satisfied by glog loggers. Messages take key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Profile describes the administrator acting on the current request.
// It is handed to every page as "information".
type Profile struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// ProfileResolver returns the profile of the acting administrator
type ProfileResolver func(ctx router.Context) Profile

// FlashStore sets one-time messages shown after the next redirect
type FlashStore interface {
	Flash(ctx router.Context, key, message string) router.Context
}

// ResetNotifier receives password reset requests once they are stored.
// Token issuance and delivery happen on the other side.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, reset *PasswordReset) error
}

// ResetNotifierFunc adapts a function to ResetNotifier
type ResetNotifierFunc func(ctx context.Context, reset *PasswordReset) error

// NotifyPasswordReset implements ResetNotifier
func (f ResetNotifierFunc) NotifyPasswordReset(ctx context.Context, reset *PasswordReset) error {
	if f == nil {
		return nil
	}
	return f(ctx, reset)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] ADMINS " + format(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] ADMINS " + format(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] ADMINS " + format(msg, args...))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] ADMINS " + format(msg, args...))
}

func format(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	return newline(b.String())
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
