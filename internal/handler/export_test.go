package handler

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tg-anonpost/internal/models"
)

func exportSubmission(text string, at time.Time) *models.Submission {
	sub := &models.Submission{
		UserID:      42,
		Username:    "sender",
		MessageType: models.TypeText,
		ContentText: text,
	}
	sub.CreatedAt = at
	return sub
}

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestGenerateWorkbookIsChronological(t *testing.T) {
	now := time.Now()
	// Newest-first input, as the by-user-ID lookup returns it
	subs := []*models.Submission{
		exportSubmission("second", now),
		exportSubmission("first", now.Add(-time.Hour)),
	}

	path, err := generateWorkbook(context.Background(), subs, "42", nil)
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(path))

	f := openWorkbook(t, path)
	a2, err := f.GetCellValue("Submissions", "A2")
	require.NoError(t, err)
	a3, err := f.GetCellValue("Submissions", "A3")
	require.NoError(t, err)
	assert.Equal(t, "first", a2)
	assert.Equal(t, "second", a3)
}

func TestGenerateWorkbookEmbedsPhoto(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))

	sub := exportSubmission("", time.Now())
	sub.MessageType = models.TypePhoto
	sub.MediaFileID = "photo-file-1"

	fetched := 0
	fetch := func(ctx context.Context, fileID string) ([]byte, string, error) {
		fetched++
		assert.Equal(t, "photo-file-1", fileID)
		return buf.Bytes(), ".png", nil
	}

	path, err := generateWorkbook(context.Background(), []*models.Submission{sub}, "42", fetch)
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(path))

	assert.Equal(t, 1, fetched)

	f := openWorkbook(t, path)
	pics, err := f.GetPictures("Submissions", "E2")
	require.NoError(t, err)
	assert.NotEmpty(t, pics)
}

func TestGenerateWorkbookTextRowsSkipFetch(t *testing.T) {
	sub := exportSubmission("just text", time.Now())

	fetch := func(ctx context.Context, fileID string) ([]byte, string, error) {
		t.Fatalf("fetch called for a text submission")
		return nil, "", nil
	}

	path, err := generateWorkbook(context.Background(), []*models.Submission{sub}, "42", fetch)
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(path))
}
