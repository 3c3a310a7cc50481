package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/types"
)

// These tests need no database: a nil store would panic if touched.

func anonymousAndUser() (context.Context, context.Context) {
	user := types.User{ID: "cqf2ofg2lmqeuhtbe3s0", Username: "alice"}
	return context.Background(), auth.ContextWithUser(context.Background(), user)
}

func TestService_anonymousReads(t *testing.T) {
	svc := New(&Config{})
	anon, _ := anonymousAndUser()

	inbox, err := svc.Inbox(anon)
	if err != nil || inbox == nil || len(inbox) != 0 {
		t.Errorf("Inbox() = %v, %v; want empty list and no error", inbox, err)
	}

	requests, err := svc.Requests(anon)
	if err != nil || requests == nil || len(requests) != 0 {
		t.Errorf("Requests() = %v, %v; want empty list and no error", requests, err)
	}

	page, err := svc.Notifications(anon, types.ListNotifications{})
	if err != nil || page.Items == nil || len(page.Items) != 0 {
		t.Errorf("Notifications() = %v, %v; want empty page and no error", page, err)
	}

	count, err := svc.UnreadNotificationsCount(anon)
	if err != nil || count != 0 {
		t.Errorf("UnreadNotificationsCount() = %d, %v; want 0 and no error", count, err)
	}

	_, err = svc.Thread(anon, types.RetrieveThread{ThreadID: "cqf2ofg2lmqeuhtbe3s0"})
	if !errs.IsNotFound(err) {
		t.Errorf("Thread() error = %v, want not found", err)
	}
}

func TestService_anonymousWrites(t *testing.T) {
	svc := New(&Config{})
	anon, _ := anonymousAndUser()
	threadID := "cqf2ofg2lmqeuhtbe3s0"

	tt := []struct {
		name string
		call func() error
	}{
		{"StartThread", func() error {
			_, err := svc.StartThread(anon, types.StartThread{OtherUserID: threadID})
			return err
		}},
		{"AcceptRequest", func() error {
			return svc.AcceptRequest(anon, types.AnswerRequest{ThreadID: threadID})
		}},
		{"DeclineRequest", func() error {
			return svc.DeclineRequest(anon, types.AnswerRequest{ThreadID: threadID})
		}},
		{"SendMessage", func() error {
			_, err := svc.SendMessage(anon, types.SendMessage{ThreadID: threadID, Content: "hi"})
			return err
		}},
		{"DeleteMessage", func() error {
			return svc.DeleteMessage(anon, types.DeleteMessage{MessageID: threadID})
		}},
		{"TogglePostLike", func() error {
			_, err := svc.TogglePostLike(anon, types.TogglePostLike{PostID: threadID})
			return err
		}},
		{"UploadAttachments", func() error {
			_, err := svc.UploadAttachments(anon, nil)
			return err
		}},
		{"RealtimeEvents", func() error {
			_, err := svc.RealtimeEvents(anon)
			return err
		}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errs.IsUnauthenticated(err) {
				t.Errorf("got %v, want unauthenticated", err)
			}
		})
	}
}

func TestService_StartThread_self(t *testing.T) {
	svc := New(&Config{})
	_, ctx := anonymousAndUser()
	user, _ := auth.UserFromContext(ctx)

	_, err := svc.StartThread(ctx, types.StartThread{OtherUserID: user.ID})
	if !errs.IsInvalidOperation(err) {
		t.Errorf("got %v, want invalid operation", err)
	}
}

func TestService_ToggleFollow_self(t *testing.T) {
	svc := New(&Config{})
	_, ctx := anonymousAndUser()
	user, _ := auth.UserFromContext(ctx)

	_, err := svc.ToggleFollow(ctx, types.ToggleFollow{FolloweeID: user.ID})
	if !errs.IsInvalidOperation(err) {
		t.Errorf("got %v, want invalid operation", err)
	}
}

func TestService_SendMessage_empty(t *testing.T) {
	svc := New(&Config{})
	_, ctx := anonymousAndUser()

	for _, content := range []string{"", "   ", "\n\t"} {
		got, err := svc.SendMessage(ctx, types.SendMessage{ThreadID: "cqf2ofg2lmqeuhtbe3s0", Content: content})
		if err != nil {
			t.Errorf("SendMessage(%q) error = %v, want nil", content, err)
		}

		if got != (types.Created{}) {
			t.Errorf("SendMessage(%q) = %+v, want zero value", content, got)
		}
	}
}

func TestService_UploadAttachments(t *testing.T) {
	_, ctx := anonymousAndUser()

	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

	upload := func(name, contentType string, content []byte) types.Upload {
		u := types.Upload{Name: name, ContentType: contentType, FileSize: uint64(len(content))}
		u.SetReader(bytes.NewReader(content))
		return u
	}

	t.Run("declared_and_sniffed", func(t *testing.T) {
		store := &fakeObjectStore{}
		svc := New(&Config{ObjectStore: store, AttachmentsBucket: "attachments"})

		got, err := svc.UploadAttachments(ctx, []types.Upload{
			upload("doc.pdf", "application/pdf", []byte("%PDF-1.4 fake")),
			upload("blob", "application/octet-stream", pngHeader),
		})
		if err != nil {
			t.Fatal(err)
		}

		if len(got) != 2 {
			t.Fatalf("got %d attachments, want 2", len(got))
		}

		if got[0].Kind != types.AttachmentKindPDF || got[0].Name == nil || *got[0].Name != "doc.pdf" {
			t.Errorf("unexpected first attachment: %+v", got[0])
		}

		if got[1].Kind != types.AttachmentKindImage {
			t.Errorf("sniffed kind = %q, want %q", got[1].Kind, types.AttachmentKindImage)
		}

		if !strings.HasSuffix(got[1].URL, ".png") || !strings.HasPrefix(got[1].URL, "https://cdn.example.org/attachments/") {
			t.Errorf("unexpected url %q", got[1].URL)
		}

		// sniffing must rewind the reader before uploading.
		if b := store.contents[store.uploaded[1].Path]; !bytes.Equal(b, pngHeader) {
			t.Errorf("uploaded %d bytes, want the full %d", len(b), len(pngHeader))
		}
	})

	t.Run("no_files", func(t *testing.T) {
		store := &fakeObjectStore{}
		svc := New(&Config{ObjectStore: store})

		got, err := svc.UploadAttachments(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}

		if got == nil || len(got) != 0 {
			t.Errorf("got %#v, want an empty non nil slice", got)
		}

		if len(store.uploaded) != 0 {
			t.Errorf("stored %d objects", len(store.uploaded))
		}
	})

	t.Run("limits", func(t *testing.T) {
		svc := New(&Config{ObjectStore: &fakeObjectStore{}, MaxUploadFiles: 2, MaxUploadSize: 4})

		tt := []struct {
			name  string
			files []types.Upload
		}{
			{"too_many", []types.Upload{
				upload("a.png", "image/png", []byte("a")),
				upload("b.png", "image/png", []byte("b")),
				upload("c.png", "image/png", []byte("c")),
			}},
			{"too_big", []types.Upload{upload("a.png", "image/png", []byte("abcde"))}},
			{"empty_file", []types.Upload{upload("a.png", "image/png", nil)}},
			{"disallowed_type", []types.Upload{upload("a.txt", "text/plain", []byte("a"))}},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.UploadAttachments(ctx, tc.files)
				if !errs.IsInvalidArgument(err) {
					t.Errorf("got %v, want invalid argument", err)
				}
			})
		}
	})

	t.Run("store_failure", func(t *testing.T) {
		svc := New(&Config{ObjectStore: &fakeObjectStore{err: errors.New("boom")}})

		_, err := svc.UploadAttachments(ctx, []types.Upload{upload("a.png", "image/png", pngHeader)})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
