package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
)

func TestMarkThreadReadMarksEveryUnreadMessage(t *testing.T) {
	repo := newFakeThreadRepo()
	repo.unread = []models.Message{
		{ID: "m1", ThreadID: "t1", SenderID: "alice"},
		{ID: "m2", ThreadID: "t1", SenderID: "alice"},
		{ID: "m3", ThreadID: "t1", SenderID: "bob"},
	}

	w := NewReceiptWriter(repo, 50, zerolog.Nop())
	marked, err := w.MarkThreadRead(context.Background(), "t1", "viewer")

	require.NoError(t, err)
	assert.Equal(t, 3, marked)
	assert.Equal(t, []string{"m1", "m2", "m3"}, repo.marked)

	// A clean fan-out reconciles the counter to zero.
	count, ok := repo.setUnreadLog["t1"]
	require.True(t, ok)
	assert.Equal(t, int64(0), count)
}

func TestMarkThreadReadReconcilesCounterPastFailedReceipt(t *testing.T) {
	repo := newFakeThreadRepo()
	repo.unread = []models.Message{
		{ID: "m1", ThreadID: "t1", SenderID: "alice"},
		{ID: "m2", ThreadID: "t1", SenderID: "alice"},
		{ID: "m3", ThreadID: "t1", SenderID: "alice"},
	}
	repo.markErrs["m2"] = errors.New("deadline exceeded")

	w := NewReceiptWriter(repo, 50, zerolog.Nop())
	marked, err := w.MarkThreadRead(context.Background(), "t1", "viewer")

	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	assert.Equal(t, []string{"m1", "m3"}, repo.marked)

	// The recount sees the dropped receipt; the counter keeps the still-unread
	// message instead of being zeroed.
	count, ok := repo.setUnreadLog["t1"]
	require.True(t, ok)
	assert.Equal(t, int64(1), count)
}

func TestMarkThreadReadFailedRecountFallsBackToFanoutResult(t *testing.T) {
	repo := newFakeThreadRepo()
	repo.unread = []models.Message{
		{ID: "m1", ThreadID: "t1", SenderID: "alice"},
		{ID: "m2", ThreadID: "t1", SenderID: "alice"},
	}
	repo.markErrs["m2"] = errors.New("deadline exceeded")
	repo.recountErr = errors.New("unavailable")

	w := NewReceiptWriter(repo, 50, zerolog.Nop())
	marked, err := w.MarkThreadRead(context.Background(), "t1", "viewer")

	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	count, ok := repo.setUnreadLog["t1"]
	require.True(t, ok)
	assert.Equal(t, int64(1), count)
}

func TestMarkThreadReadNothingUnread(t *testing.T) {
	repo := newFakeThreadRepo()

	w := NewReceiptWriter(repo, 50, zerolog.Nop())
	marked, err := w.MarkThreadRead(context.Background(), "t1", "viewer")

	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.Empty(t, repo.marked)
	assert.Equal(t, int64(0), repo.setUnreadLog["t1"])
}
