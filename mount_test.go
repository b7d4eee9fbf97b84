package admins

import (
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIndexHandlerRendersLandingPage(t *testing.T) {
	handler := IndexHandler(UserRouterConfig{
		Title:             "Back Office",
		AdministratorsURL: "/backoffice/administrators",
		Profile: func(router.Context) Profile {
			return Profile{Username: "owner"}
		},
		ViewData: func(_ router.Context, data router.ViewContext) router.ViewContext {
			data["csrf_token"] = "token123"
			return data
		},
	})

	ctx := router.NewMockContext()
	var data router.ViewContext
	ctx.On("Render", "index", mock.Anything).Run(func(args mock.Arguments) {
		data = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, handler(ctx))
	ctx.AssertExpectations(t)

	assert.Equal(t, "Back Office", data["title"])
	assert.Equal(t, "owner", data["information"].(Profile).Username)
	assert.Equal(t, "token123", data["csrf_token"])
	assert.Equal(t, map[string]string{"list": "/backoffice/administrators"}, data["urls"])
}

func TestIndexHandlerCustomView(t *testing.T) {
	handler := IndexHandler(UserRouterConfig{IndexView: "home"})

	ctx := router.NewMockContext()
	var data router.ViewContext
	ctx.On("Render", "home", mock.Anything).Run(func(args mock.Arguments) {
		data = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, handler(ctx))
	ctx.AssertExpectations(t)
	assert.NotContains(t, data, "urls")
}
