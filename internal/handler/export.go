package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/xuri/excelize/v2"

	"tg-anonpost/internal/logger"
	"tg-anonpost/internal/models"
	"tg-anonpost/internal/relay"
)

// mediaFetcher downloads a stored media file by its platform file
// ID, returning the raw bytes and the file extension.
type mediaFetcher func(ctx context.Context, fileID string) ([]byte, string, error)

// fetchMedia resolves a file ID through the bot API and downloads it
func fetchMedia(bot *telego.Bot) mediaFetcher {
	return func(ctx context.Context, fileID string) ([]byte, string, error) {
		file, err := bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
		if err != nil {
			return nil, "", err
		}
		data, err := tu.DownloadFile(bot.FileDownloadURL(file.FilePath))
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Ext(file.FilePath), nil
	}
}

// sendExport builds the /info workbook and sends it back as a
// document: one row per submission with timestamp, type, a
// hyperlink to the channel post and, for photos and stickers, the
// image itself.
func sendExport(ctx context.Context, bot *telego.Bot, chatID int64, subs []*models.Submission, label string) error {
	path, err := generateWorkbook(ctx, subs, label, fetchMedia(bot))
	if err != nil {
		logger.Errorf("Failed to build export for %s: %v", label, err)
		return reply(ctx, bot, chatID, "❌ Couldn't build the export file.")
	}
	defer os.RemoveAll(filepath.Dir(path))

	file, err := os.Open(path)
	if err != nil {
		logger.Errorf("Failed to open export file: %v", err)
		return reply(ctx, bot, chatID, "❌ Couldn't build the export file.")
	}
	defer file.Close()

	_, err = bot.SendDocument(ctx, &telego.SendDocumentParams{
		ChatID:   telego.ChatID{ID: chatID},
		Document: telego.InputFile{File: file},
		Caption:  fmt.Sprintf("Submissions for %s (total: %d)", label, len(subs)),
	})
	if err != nil {
		logger.Errorf("Failed to send export document: %v", err)
		return reply(ctx, bot, chatID, "❌ Couldn't send the export file.")
	}
	return nil
}

func generateWorkbook(ctx context.Context, subs []*models.Submission, label string, fetch mediaFetcher) (string, error) {
	tmpDir, err := os.MkdirTemp("", "anonpost_export_")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", err
	}

	headers := []string{"Message", "Sent (UTC)", "Type", "Channel Link", "Photo"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", err
		}
	}
	f.SetColWidth(sheet, "A", "A", 70)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 12)
	f.SetColWidth(sheet, "D", "D", 40)
	f.SetColWidth(sheet, "E", "E", 20)

	// Export chronologically regardless of the lookup order
	ordered := make([]*models.Submission, len(subs))
	copy(ordered, subs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for i, sub := range ordered {
		row := i + 2
		text := sub.ContentText
		if text == "" {
			text = "(" + sub.MessageType + ")"
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), text)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), sub.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), sub.MessageType)

		if link := relay.ChannelLink(sub.ChannelUsername, sub.ChannelMessageID); link != "" {
			cell := fmt.Sprintf("D%d", row)
			f.SetCellValue(sheet, cell, "Open")
			if err := f.SetCellHyperLink(sheet, cell, link, "External"); err != nil {
				return "", err
			}
		}

		if err := embedImage(ctx, f, sheet, row, sub, fetch); err != nil {
			// The file may have expired on the platform side; the
			// rest of the export is still useful.
			logger.Warningf("Skipping image for submission %d: %v", sub.ID, err)
		}
	}

	name := fmt.Sprintf("info_%s.xlsx", strings.TrimPrefix(label, "@"))
	path := filepath.Join(tmpDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

// embedImage downloads a photo or sticker submission and places it
// in the Photo column with an enlarged row.
func embedImage(ctx context.Context, f *excelize.File, sheet string, row int, sub *models.Submission, fetch mediaFetcher) error {
	if fetch == nil || sub.MediaFileID == "" {
		return nil
	}
	if sub.MessageType != models.TypePhoto && sub.MessageType != models.TypeSticker {
		return nil
	}

	data, ext, err := fetch(ctx, sub.MediaFileID)
	if err != nil {
		return err
	}
	if err := f.AddPictureFromBytes(sheet, fmt.Sprintf("E%d", row), &excelize.Picture{
		Extension: ext,
		File:      data,
		Format:    &excelize.GraphicOptions{AutoFit: true},
	}); err != nil {
		return err
	}
	return f.SetRowHeight(sheet, row, 90)
}
