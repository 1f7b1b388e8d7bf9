package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	for _, ok := range []string{"a@b.co", "first.last@sub.example.org"} {
		assert.True(t, IsEmail(ok), ok)
	}
	for _, bad := range []string{"", "a@b", "a b@c.d", "@b.co", "a@.", "plain"} {
		assert.False(t, IsEmail(bad), bad)
	}
}

func TestIsPassword(t *testing.T) {
	assert.False(t, IsPassword("12345"))
	assert.True(t, IsPassword("123456"))

	// multi-byte characters count once, matching the min=6 tag
	for _, pw := range []string{"héllo", "пароль", "密码密码密码"} {
		err := ValidateRegister(RegisterInput{Email: "a@b.co", Password: pw, FullName: "Ada"})
		assert.Equal(t, IsPassword(pw), err == nil, pw)
	}
	assert.False(t, IsPassword("héllo"))
	assert.True(t, IsPassword("пароль"))
}

func TestValidateRegister(t *testing.T) {
	cases := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"ok", RegisterInput{"a@b.co", "secret1", "Ada"}, ""},
		{"missing name", RegisterInput{"a@b.co", "secret1", "  "}, MsgRegisterFieldsRequired},
		{"missing email", RegisterInput{"", "secret1", "Ada"}, MsgRegisterFieldsRequired},
		{"bad email", RegisterInput{"ada", "secret1", "Ada"}, MsgInvalidEmail},
		{"short password", RegisterInput{"a@b.co", "123", "Ada"}, MsgPasswordTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRegister(tc.in)
			if tc.msg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestValidateLoginChecksPresenceOnly(t *testing.T) {
	assert.NoError(t, ValidateLogin("not-an-email", "x"))
	assert.EqualError(t, ValidateLogin("", "x"), MsgLoginFieldsRequired)
	assert.EqualError(t, ValidateLogin("a@b.co", ""), MsgLoginFieldsRequired)
}
