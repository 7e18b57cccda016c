package form

import (
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize caps an uploaded attachment.
const MaxImageSize = 5 << 20

// Upload is a file received with a form.
type Upload struct {
	Filename string
	Data     []byte
}

// ContentType sniffs the upload's MIME type from its bytes.
func (u *Upload) ContentType() string {
	return mimetype.Detect(u.Data).String()
}

// Extension is the canonical extension for the sniffed type, with the dot.
func (u *Upload) Extension() string {
	return mimetype.Detect(u.Data).Extension()
}

type PostInput struct {
	Text       string  `form:"text" validate:"required"`
	Group      string  `form:"group" validate:"omitempty,numeric"`
	ClearImage bool    `form:"image-clear"`
	Image      *Upload `form:"-"`
}

// Clean normalises submitted values before validation.
func (in *PostInput) Clean() {
	in.Text = strings.TrimSpace(in.Text)
	in.Group = strings.TrimSpace(in.Group)
}

// GroupID is the selected group, nil when none was chosen.
func (in *PostInput) GroupID() *uint64 {
	if in.Group == "" {
		return nil
	}
	id, err := strconv.ParseUint(in.Group, 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

func (in *PostInput) Validate() Errors {
	in.Clean()
	errs := Validate(in)
	if in.Image != nil {
		errs = merge(errs, validateImage(in.Image))
	}
	return errs
}

func validateImage(u *Upload) Errors {
	errs := Errors{}
	switch {
	case len(u.Data) == 0:
		errs.Add("image", "The submitted file is empty.")
	case len(u.Data) > MaxImageSize:
		errs.Add("image", "The submitted file is too large.")
	case !strings.HasPrefix(u.ContentType(), "image/"):
		errs.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

type CommentInput struct {
	Text string `form:"text" validate:"required"`
}

func (in *CommentInput) Validate() Errors {
	in.Text = strings.TrimSpace(in.Text)
	return Validate(in)
}
