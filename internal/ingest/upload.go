package ingest

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/extract"
)

var acceptedUploadTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}

const unknownParty = "Unknown"

// ValidateUpload sniffs the content type and enforces the size limit. It returns the
// detected MIME type; the declared content type is not trusted.
func ValidateUpload(u Upload, maxBytes int64) (string, error) {
	if len(u.Content) == 0 {
		return "", &ValidationError{Field: "file", Message: "file is empty"}
	}

	if maxBytes > 0 && int64(len(u.Content)) > maxBytes {
		return "", &ValidationError{Field: "file", Message: fmt.Sprintf("file size exceeds %d bytes", maxBytes)}
	}

	mt := mimetype.Detect(u.Content)
	if !mimetype.EqualsAny(mt.String(), acceptedUploadTypes...) {
		return "", &ValidationError{Field: "file", Message: fmt.Sprintf("unsupported file type %s", mt.String())}
	}

	return mt.String(), nil
}

// NormalizeUpload runs OCR and field extraction. OCR failures yield empty text and
// zero confidence, never an error.
func NormalizeUpload(ctx context.Context, ocr TextExtractor, u Upload, mimeType string, log zerolog.Logger) Normalized {
	var (
		text       string
		confidence float64
	)

	if ocr != nil {
		var err error

		text, confidence, err = ocr.ExtractText(ctx, u.Content, mimeType)
		if err != nil {
			log.Warn().Err(err).Str("filename", u.Filename).Msg("OCR failed, continuing with empty text")

			text, confidence = "", 0
		}
	}

	text = strings.TrimSpace(text)
	c := extract.ExtractLenient(text)

	if c.Counterparty == "" {
		c.Counterparty = receiptHeader(text)
	}

	return Normalized{
		Candidate:  c,
		Text:       text,
		Confidence: confidence,
		Metadata: map[string]any{
			"filename":       u.Filename,
			"content_type":   mimeType,
			"ocr_confidence": confidence,
		},
	}
}

// receiptHeader returns the first line that reads like a name, which on most receipts
// is the merchant.
func receiptHeader(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) < 3 || len([]rune(line)) > 60 {
			continue
		}

		letters := 0

		for _, r := range line {
			if unicode.IsLetter(r) {
				letters++
			}
		}

		if letters*2 >= len([]rune(line)) {
			return line
		}
	}

	return unknownParty
}
