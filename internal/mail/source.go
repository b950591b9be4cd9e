package mail

import (
	"context"
	"path/filepath"
	"time"

	"github.com/yashikota/maildigest/internal/model"
)

// Source lists unread email messages for processing.
// Implementations own the connection lifecycle; Disconnect must be safe
// to call after a failed ListUnread.
type Source interface {
	// ListUnread returns up to limit unread messages, oldest first.
	// Attachments are materialized to local files before return.
	ListUnread(ctx context.Context, limit int) ([]model.EmailMessage, error)

	// Disconnect releases the underlying connection.
	Disconnect() error
}

// StubSource is a Source backed by in-memory messages. It exists so the
// pipeline can run end to end without a mailbox, and so tests can
// script exact inbox contents.
type StubSource struct {
	// Messages are returned by ListUnread in order.
	Messages []model.EmailMessage

	// Err, when set, is returned by ListUnread instead of messages.
	Err error
}

// stubBody is the canned message body. It is HTML on purpose: the stub
// materializes it through BodyText exactly like a mailbox-backed source
// would, so the flattening path runs on every stub delivery.
const stubBody = `<html><head><style>p { margin: 0; }</style></head><body>
<p>Hello,</p>
<p>Please find the attached documents.</p>
</body></html>`

// NewStubSource creates a stub source with one canned message carrying
// the given attachment paths.
func NewStubSource(attachmentPaths ...string) *StubSource {
	attachments := make([]model.Attachment, 0, len(attachmentPaths))
	for _, path := range attachmentPaths {
		attachments = append(attachments, model.Attachment{
			Filename:    filepath.Base(path),
			ContentType: "application/octet-stream",
			Path:        path,
		})
	}

	return &StubSource{
		Messages: []model.EmailMessage{
			{
				ID:          "stub-1",
				Subject:     "Documents for review",
				Sender:      "sender@example.com",
				Date:        time.Now().Format(time.RFC1123Z),
				Body:        BodyText([]byte(stubBody), "utf-8", "text/html"),
				Attachments: attachments,
			},
		},
	}
}

// ListUnread implements Source.
func (s *StubSource) ListUnread(_ context.Context, limit int) ([]model.EmailMessage, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	if limit <= 0 || limit >= len(s.Messages) {
		return s.Messages, nil
	}
	return s.Messages[:limit], nil
}

// Disconnect implements Source. The stub holds no connection.
func (s *StubSource) Disconnect() error {
	return nil
}
