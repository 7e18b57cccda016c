package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent GIF.
var tinyGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02,
	0x44, 0x01, 0x00, 0x3b,
}

func TestPostInputRequiresText(t *testing.T) {
	in := PostInput{Text: "   \n\t"}
	errs := in.Validate()
	require.NotNil(t, errs)
	assert.Equal(t, "This field is required.", errs.First("text"))
	assert.Empty(t, in.Text)
}

func TestPostInputValid(t *testing.T) {
	in := PostInput{Text: " hello ", Group: "3", Image: &Upload{Filename: "a.gif", Data: tinyGIF}}
	assert.Nil(t, in.Validate())
	assert.Equal(t, "hello", in.Text)
	require.NotNil(t, in.GroupID())
	assert.Equal(t, uint64(3), *in.GroupID())
	assert.Equal(t, "image/gif", in.Image.ContentType())
	assert.Equal(t, ".gif", in.Image.Extension())
}

func TestPostInputGroup(t *testing.T) {
	in := PostInput{Text: "x"}
	assert.Nil(t, in.GroupID())

	in.Group = "abc"
	errs := in.Validate()
	assert.True(t, errs.Has("group"))
}

func TestPostInputRejectsNonImage(t *testing.T) {
	in := PostInput{Text: "x", Image: &Upload{Filename: "a.png", Data: []byte("definitely not a picture")}}
	errs := in.Validate()
	require.NotNil(t, errs)
	assert.True(t, errs.Has("image"))
	assert.False(t, errs.Has("text"))
}

func TestCommentInput(t *testing.T) {
	assert.True(t, (&CommentInput{Text: " "}).Validate().Has("text"))
	assert.Nil(t, (&CommentInput{Text: "nice"}).Validate())
}

func TestSignupInput(t *testing.T) {
	in := SignupInput{
		Username:  "bad name",
		Email:     "not-an-email",
		Password1: "longenough",
		Password2: "different1",
	}
	errs := in.Validate()
	assert.True(t, errs.Has("username"))
	assert.True(t, errs.Has("email"))
	assert.Equal(t, "The two password fields didn't match.", errs.First("password2"))

	ok := SignupInput{Username: "leo", Email: " Leo@Example.com ", Password1: "longenough", Password2: "longenough"}
	assert.Nil(t, ok.Validate())
	assert.Equal(t, "leo@example.com", ok.Email)
}

func TestPasswordResetConfirmInput(t *testing.T) {
	in := PasswordResetConfirmInput{Email: "a@b.co", Code: "12a", NewPassword1: "short", NewPassword2: "short"}
	errs := in.Validate()
	assert.True(t, errs.Has("code"))
	assert.True(t, errs.Has("new_password1"))
}

func TestErrorsError(t *testing.T) {
	errs := Errors{}
	errs.Add("text", "This field is required.")
	errs.Add(NonField, "boom")
	assert.Equal(t, "invalid form: __all__: boom; text: This field is required.", errs.Error())
}

func TestErrorsGetAndFirst(t *testing.T) {
	errs := Errors{}
	errs.Add("image", "Upload a valid image.")
	errs.Add("image", "The file is too large.")
	assert.Equal(t, []string{"Upload a valid image.", "The file is too large."}, errs.Get("image"))
	assert.Equal(t, "Upload a valid image.", errs.First("image"))
	assert.Nil(t, errs.Get("text"))
	assert.Empty(t, errs.First("text"))
}
