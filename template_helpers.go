package admins

import (
	"maps"
	"time"

	"github.com/goliatone/go-auth/middleware/csrf"
	"github.com/goliatone/go-router"
)

// TemplateHelpers returns the helpers registered on the view engine.
//
// In templates:
//
//	{% if is_activated(admin) %}
//	{{ status_action(admin.status) }}
//	{{ csrf_field|safe }}
func TemplateHelpers() map[string]any {
	helpers := map[string]any{
		"is_activated":  isActivatedView,
		"status_action": statusAction,
		"status_label":  statusLabel,
		"roles":         GetAllRoles(),
		"statuses": map[string]string{
			"activated":   StatusActivated,
			"deactivated": StatusDeactivated,
		},
	}

	maps.Copy(helpers, csrf.CSRFTemplateHelpers())

	return helpers
}

// CSRFViewData copies the request CSRF token helpers into data
func CSRFViewData(ctx router.Context, data router.ViewContext) router.ViewContext {
	maps.Copy(data, csrf.CSRFTemplateHelpersWithRouter(ctx, csrf.DefaultContextKey))
	return data
}

// AdministratorToView exposes a record to templates. The password hash
// is never part of it.
func AdministratorToView(a *Administrator) router.ViewContext {
	if a == nil {
		return router.ViewContext{}
	}

	return router.ViewContext{
		"id":             a.ID.String(),
		"username":       a.Username,
		"email":          a.Email,
		"role":           a.Role,
		"status":         a.Status,
		"password_reset": a.IsPasswordReset(),
		"created_at":     formatTime(a.CreatedAt),
		"updated_at":     formatTime(a.UpdatedAt),
	}
}

func AdministratorsToView(records []*Administrator) []router.ViewContext {
	out := make([]router.ViewContext, 0, len(records))
	for _, r := range records {
		out = append(out, AdministratorToView(r))
	}
	return out
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func isActivatedView(v any) bool {
	switch val := v.(type) {
	case *Administrator:
		return val.IsActivated()
	case router.ViewContext:
		s, _ := val["status"].(string)
		return s == StatusActivated
	case map[string]any:
		s, _ := val["status"].(string)
		return s == StatusActivated
	case string:
		return val == StatusActivated
	}
	return false
}

// statusAction is the label of the button that flips the status
func statusAction(status string) string {
	if status == StatusActivated {
		return "Deactivate"
	}
	return "Activate"
}

func statusLabel(status string) string {
	switch status {
	case StatusActivated:
		return "success"
	case StatusDeactivated:
		return "secondary"
	}
	return "light"
}
