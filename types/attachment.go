package types

import (
	"io"
	"strings"
)

// Attachment is an already uploaded file referenced by a message.
// It is persisted verbatim.
type Attachment struct {
	URL  string         `json:"url" validate:"required,url"`
	Kind AttachmentKind `json:"type" validate:"required,oneof=image video pdf other"`
	Name *string        `json:"name,omitempty" validate:"omitempty,max=255"`
}

type AttachmentKind string

const (
	AttachmentKindImage AttachmentKind = "image"
	AttachmentKindVideo AttachmentKind = "video"
	AttachmentKindPDF   AttachmentKind = "pdf"
	AttachmentKindOther AttachmentKind = "other"
)

func (k AttachmentKind) String() string {
	return string(k)
}

// AttachmentKindFromContentType classifies a MIME type.
func AttachmentKindFromContentType(contentType string) AttachmentKind {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i != -1 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	switch {
	case strings.HasPrefix(contentType, "image/"):
		return AttachmentKindImage
	case strings.HasPrefix(contentType, "video/"):
		return AttachmentKindVideo
	case contentType == "application/pdf":
		return AttachmentKindPDF
	}

	return AttachmentKindOther
}

// Upload is a raw file on its way to object storage.
type Upload struct {
	reader      io.ReadSeeker
	Name        string
	Path        string
	ContentType string
	FileSize    uint64
}

func (u *Upload) SetReader(reader io.ReadSeeker) {
	u.reader = reader
}

func (u *Upload) Reader() io.ReadSeeker {
	return u.reader
}

func (u Upload) Kind() AttachmentKind {
	return AttachmentKindFromContentType(u.ContentType)
}
