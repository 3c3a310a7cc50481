package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/ptr"
	"github.com/nakamauwu/backchannel/types"
)

const (
	defaultMaxUploadFiles = 10
	defaultMaxUploadSize  = 25 << 20 // 25MiB
)

// UploadAttachments stores raw files and returns the attachments
// to reference from a message. Nothing is kept when any file fails.
// No files means no attachments.
func (svc *Service) UploadAttachments(ctx context.Context, files []types.Upload) ([]types.Attachment, error) {
	if _, loggedIn := auth.UserFromContext(ctx); !loggedIn {
		return nil, errs.Unauthenticated
	}

	if len(files) == 0 {
		return []types.Attachment{}, nil
	}

	if len(files) > svc.maxUploadFiles {
		return nil, errs.NewInvalidArgumentError("Files", fmt.Sprintf("at most %d files are allowed", svc.maxUploadFiles))
	}

	now := time.Now().UTC()
	for i := range files {
		if err := svc.prepareUpload(&files[i], now); err != nil {
			return nil, err
		}
	}

	if _, err := svc.ObjectStore.UploadMany(ctx, svc.attachmentsBucket, files); err != nil {
		return nil, err
	}

	out := make([]types.Attachment, 0, len(files))
	for _, f := range files {
		out = append(out, types.Attachment{
			URL:  svc.ObjectStore.ObjectURL(svc.attachmentsBucket, f.Path),
			Kind: f.Kind(),
			Name: ptr.NonZero(f.Name),
		})
	}

	return out, nil
}

// prepareUpload checks the size, settles the content type
// and assigns the object path.
func (svc *Service) prepareUpload(f *types.Upload, now time.Time) error {
	if f.Reader() == nil {
		return errs.NewInvalidArgumentError("Files", "file is empty")
	}

	if f.FileSize == 0 {
		return errs.NewInvalidArgumentError("Files", fmt.Sprintf("%q is empty", f.Name))
	}

	if f.FileSize > svc.maxUploadSize {
		return errs.NewInvalidArgumentError("Files", fmt.Sprintf("%q exceeds the %d bytes limit", f.Name, svc.maxUploadSize))
	}

	ext := strings.ToLower(path.Ext(f.Name))

	if needsSniffing(f.ContentType) {
		mime, err := mimetype.DetectReader(f.Reader())
		if err != nil {
			return fmt.Errorf("detect content type of %q: %w", f.Name, err)
		}

		if _, err := f.Reader().Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind %q: %w", f.Name, err)
		}

		f.ContentType = mime.String()
		if ext == "" {
			ext = mime.Extension()
		}
	}

	if f.Kind() == types.AttachmentKindOther {
		return errs.NewInvalidArgumentError("Files", fmt.Sprintf("%q type %q is not allowed", f.Name, f.ContentType))
	}

	f.Path = now.Format("2006/01/02/") + id.Generate() + ext

	return nil
}

func needsSniffing(contentType string) bool {
	contentType = strings.TrimSpace(contentType)
	return contentType == "" || strings.HasPrefix(contentType, "application/octet-stream")
}
