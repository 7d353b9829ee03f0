package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/text/encoding/unicode"

	"imagehound/internal/models"
	"imagehound/internal/shared"
)

// unicodeMarker prefixes UserComment payloads declared as wide characters.
// The marker is 8 bytes: the literal "UNICODE" plus a NUL pad.
var unicodeMarker = []byte("UNICODE")

// ContentService downloads item content and extracts the embedded EXIF
// user comment.
type ContentService struct {
	httpClient *http.Client
	logger     *log.Logger
}

// NewContentService creates a new content fetcher.
func NewContentService(client *http.Client, logger *log.Logger) *ContentService {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ContentService{httpClient: client, logger: logger}
}

// FetchComment downloads the item's content into a transient file and reads
// its EXIF UserComment tag. The temporary file is removed on every exit
// path. A content body without a decodable comment returns ("", false, nil);
// only download and filesystem failures return an error.
func (c *ContentService) FetchComment(ctx context.Context, item models.ListingItem) (string, bool, error) {
	path := shared.TempFileName(int64(item.ID))
	defer os.Remove(path)

	if err := c.download(ctx, item.URL, path); err != nil {
		return "", false, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to open downloaded content: %w", err)
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil {
		// No metadata container in the content; a soft miss.
		return "", false, nil
	}

	tag, err := meta.Get(exif.UserComment)
	if err != nil {
		return "", false, nil
	}

	comment := DecodeUserComment(tag.Val)
	if strings.TrimSpace(comment) == "" {
		return "", false, nil
	}

	return comment, true, nil
}

func (c *ContentService) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrDownload, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("%w: %v", shared.ErrDownload, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush temp file: %w", err)
	}

	return nil
}

// DecodeUserComment decodes a raw EXIF UserComment value. A leading
// UNICODE marker is stripped and the payload is tried as UTF-16-BE, then
// UTF-8, then ASCII, in that order, with embedded NULs discarded. When
// every decoding fails the raw bytes are coerced to a string directly.
func DecodeUserComment(raw []byte) string {
	value := raw
	wide := bytes.HasPrefix(value, unicodeMarker)
	if wide {
		// A truncated marker carries no payload.
		if len(value) < 8 {
			return ""
		}
		value = value[8:]
	}

	if wide && len(value)%2 == 0 {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		if decoded, err := decoder.Bytes(value); err == nil && utf8.Valid(decoded) && !bytes.ContainsRune(decoded, utf8.RuneError) {
			return stripNulls(string(decoded))
		}
	}

	if utf8.Valid(value) {
		return stripNulls(string(value))
	}

	if isASCII(value) {
		return stripNulls(string(value))
	}

	return stripNulls(string(raw))
}

func stripNulls(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}
