package admins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Bob@X.com ", "bob@x.com"},
		{"John.Doe+admin@Gmail.com", "johndoe@gmail.com"},
		{"jane.doe@googlemail.com", "janedoe@gmail.com"},
		{"first.last+tag@example.com", "first.last+tag@example.com"},
		{"j..doe@gmail.com", "j..doe@gmail.com"},
		{"Bob+news@Outlook.com", "bob@outlook.com"},
		{"bob+x@hotmail.co.uk", "bob@hotmail.co.uk"},
		{"bob.smith+x@live.com", "bob.smith@live.com"},
		{"bob+x@msn.com", "bob@msn.com"},
		{"bob-x@yahoo.com", "bob@yahoo.com"},
		{"bob-smith-x@ymail.com", "bob-smith@ymail.com"},
		{"bob+x@yahoo.com", "bob+x@yahoo.com"},
		{"Bob+x@iCloud.com", "bob@icloud.com"},
		{"bob+x@me.com", "bob@me.com"},
		{"Bob@ya.ru", "bob@yandex.ru"},
		{"bob+x@yandex.com", "bob+x@yandex.ru"},
		{"+x@outlook.com", "+x@outlook.com"},
		{"-x@yahoo.com", "-x@yahoo.com"},
		{"not-an-email", "not-an-email"},
		{"@example.com", "@example.com"},
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeEmail(tc.in))
		})
	}
}

func TestSanitizeTrimsWithoutEscaping(t *testing.T) {
	in := AdministratorInput{
		Username: "  <b>bob</b> ",
		Email:    " BOB@x.com",
		Password: " 1234 ",
		Role:     " editor\t",
	}

	out := in.Sanitize()

	assert.Equal(t, "<b>bob</b>", out.Username)
	assert.Equal(t, "bob@x.com", out.Email)
	assert.Equal(t, "1234", out.Password)
	assert.Equal(t, "editor", out.Role)
}
