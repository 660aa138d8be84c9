package sync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
)

// ReceiptWriter marks a thread's unread messages as read when the viewer
// opens it. The fan-out is per-message and best-effort: a failed update
// leaves that message unread with no rollback, and the accepted
// inconsistency window closes on the next open.
type ReceiptWriter struct {
	threads  repositories.ThreadRepository
	pageSize int
	log      zerolog.Logger
}

// NewReceiptWriter creates a ReceiptWriter.
func NewReceiptWriter(threads repositories.ThreadRepository, pageSize int, log zerolog.Logger) *ReceiptWriter {
	return &ReceiptWriter{threads: threads, pageSize: pageSize, log: log}
}

// MarkThreadRead appends uid to the read-by set of every currently-loaded
// unread message in the thread, then reconciles the thread's denormalized
// unread count for uid against a fresh recount. After a fully successful
// fan-out the recount is zero; dropped receipts and messages that arrived
// mid-fan-out keep the counter honest. Returns how many messages were marked.
func (w *ReceiptWriter) MarkThreadRead(ctx context.Context, threadID, uid string) (int, error) {
	msgs, err := w.threads.ListUnreadMessages(ctx, threadID, uid, w.pageSize)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, m := range msgs {
		if err := w.threads.MarkMessageRead(ctx, threadID, m.ID, uid); err != nil {
			w.log.Warn().Err(err).
				Str("thread_id", threadID).
				Str("message_id", m.ID).
				Msg("read receipt dropped")
			continue
		}
		marked++
	}

	remaining, err := w.threads.RecountUnread(ctx, threadID, uid, w.pageSize)
	if err != nil {
		w.log.Warn().Err(err).Str("thread_id", threadID).Msg("unread recount dropped")
		remaining = len(msgs) - marked
	}
	if err := w.threads.SetUnread(ctx, threadID, uid, int64(remaining)); err != nil {
		w.log.Warn().Err(err).Str("thread_id", threadID).Msg("unread counter reconciliation dropped")
	}

	return marked, nil
}
