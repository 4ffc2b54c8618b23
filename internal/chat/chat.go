// Package chat implements the dashboard's chat widget: query
// submission, the single pending-attachment slot, reply rendering and
// the session transcript.
package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/chatclient"
	"github.com/matdash/matdash/internal/config"
)

// Attachment validation failures. Both are raised before any request to
// the chat backend is issued.
var (
	ErrBadFileType  = errors.New("file type not allowed: only PDF, PNG and JPEG documents are accepted")
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
)

// Widget owns the chat UI state: the pending attachment slot and the
// transcript store. Submissions are independent request/response pairs;
// there is no in-flight cancellation.
type Widget struct {
	client *chatclient.Client
	store  *Store
	cfg    *config.Config
	logger *zap.Logger

	mu      sync.Mutex
	pending *Attachment
}

// New creates the chat widget.
func New(client *chatclient.Client, store *Store, cfg *config.Config, logger *zap.Logger) *Widget {
	return &Widget{
		client: client,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Attach validates the document and places it in the pending slot,
// replacing any previous selection. Validation failures leave the slot
// untouched and nothing is sent anywhere.
func (w *Widget) Attach(att Attachment) error {
	if !w.cfg.TypeAllowed(att.MediaType) {
		return ErrBadFileType
	}
	if att.Size > w.cfg.MaxFileSizeBytes() {
		return fmt.Errorf("%w (%d MB limit)", ErrFileTooLarge, w.cfg.Upload.MaxFileSizeMB)
	}
	if att.DocType == "" {
		att.DocType = "other"
	}

	w.mu.Lock()
	w.pending = &att
	w.mu.Unlock()
	return nil
}

// Pending returns the current attachment, or nil.
func (w *Widget) Pending() *Attachment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// ClearAttachment empties the slot (explicit removal or panel close).
func (w *Widget) ClearAttachment() {
	w.mu.Lock()
	w.pending = nil
	w.mu.Unlock()
}

// takePending consumes the slot: the attachment is cleared on send
// whether or not the upload succeeds.
func (w *Widget) takePending() *Attachment {
	w.mu.Lock()
	defer w.mu.Unlock()
	att := w.pending
	w.pending = nil
	return att
}

// Submit sends the query (and the pending attachment, if any) and
// returns the rendered exchange. sessionID may be empty, in which case
// a new session is created.
func (w *Widget) Submit(ctx context.Context, sessionID, text string) (*Exchange, error) {
	sessionID, err := w.ensureSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if att := w.takePending(); att != nil {
		return w.submitDocument(ctx, sessionID, text, att)
	}
	return w.submitQuery(ctx, sessionID, text)
}

func (w *Widget) submitQuery(ctx context.Context, sessionID, text string) (*Exchange, error) {
	w.recordMessage(ctx, sessionID, SenderUser, text, nil)

	reply, err := w.client.Query(ctx, text)
	if err != nil {
		return nil, err
	}

	html, err := RenderMessage(SenderAI, reply.Answer, reply.Data)
	if err != nil {
		return nil, err
	}

	w.recordMessage(ctx, sessionID, SenderAI, reply.Answer, reply.Data)
	return &Exchange{
		SessionID: sessionID,
		Answer:    reply.Answer,
		HTML:      html,
		Data:      reply.Data,
	}, nil
}

func (w *Widget) submitDocument(ctx context.Context, sessionID, text string, att *Attachment) (*Exchange, error) {
	w.recordMessage(ctx, sessionID, SenderUser, attachmentBody(text, att), nil)

	result, err := w.client.UploadDocument(ctx, chatclient.Document{
		FileName:    att.FileName,
		DocType:     att.DocType,
		UserMessage: text,
		Content:     bytes.NewReader(att.Content),
	})
	if err != nil {
		return nil, err
	}

	answer := result.Message
	if answer == "" {
		answer = "Document received and queued for processing."
	}
	if result.Details != "" {
		answer += "\n\n" + result.Details
	}

	html, err := RenderMessage(SenderAI, answer, result.Data)
	if err != nil {
		return nil, err
	}

	w.recordMessage(ctx, sessionID, SenderAI, answer, result.Data)
	return &Exchange{
		SessionID: sessionID,
		Answer:    answer,
		HTML:      html,
		Data:      result.Data,
	}, nil
}

// ensureSession resolves or creates the transcript session.
func (w *Widget) ensureSession(ctx context.Context, sessionID string) (string, error) {
	if w.store == nil {
		return sessionID, nil
	}
	if sessionID != "" {
		ok, err := w.store.SessionExists(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if ok {
			return sessionID, nil
		}
	}
	return w.store.CreateSession(ctx, "dashboard")
}

// recordMessage appends to the transcript. History is best-effort: a
// storage failure must not break the exchange itself.
func (w *Widget) recordMessage(ctx context.Context, sessionID string, sender Sender, body string, data []byte) {
	if w.store == nil || sessionID == "" {
		return
	}
	if err := w.store.Append(ctx, sessionID, sender, body, data); err != nil {
		w.logger.Warn("recording chat message failed", zap.Error(err))
	}
}

func attachmentBody(text string, att *Attachment) string {
	if text == "" {
		return fmt.Sprintf("[attached %s]", att.FileName)
	}
	return fmt.Sprintf("%s [attached %s]", text, att.FileName)
}
