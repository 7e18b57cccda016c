package form

import "strings"

type SignupInput struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

func (in *SignupInput) Validate() Errors {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return Validate(in)
}

type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

func (in *LoginInput) Validate() Errors {
	in.Username = strings.TrimSpace(in.Username)
	return Validate(in)
}

type PasswordChangeInput struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

func (in *PasswordChangeInput) Validate() Errors {
	return Validate(in)
}

type PasswordResetInput struct {
	Email string `form:"email" validate:"required,email"`
}

func (in *PasswordResetInput) Validate() Errors {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return Validate(in)
}

type PasswordResetConfirmInput struct {
	Email        string `form:"email" validate:"required,email"`
	Code         string `form:"code" validate:"required,len=6,numeric"`
	NewPassword1 string `form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

func (in *PasswordResetConfirmInput) Validate() Errors {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Code = strings.TrimSpace(in.Code)
	return Validate(in)
}
