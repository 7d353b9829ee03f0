// package formatter provides functions to export harvested records to CSV and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"imagehound/internal/models"
)

// ExportToCSV converts harvested records to CSV with columns:
// ID, URL, Hash, CreatedAt, PostID, Username, WebURL, Tags, UserComment
func ExportToCSV(records []*models.ImageRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "URL", "Hash", "CreatedAt", "PostID", "Username", "WebURL", "Tags", "UserComment"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		createdAt := ""
		if record.CreatedAt != nil {
			createdAt = record.CreatedAt.Format(time.RFC3339)
		}

		row := []string{
			strconv.FormatInt(record.ID, 10),
			record.URL,
			record.Hash,
			createdAt,
			strconv.FormatInt(record.PostID, 10),
			record.Username,
			record.WebURL,
			strings.Join(record.Tags, "|"),
			record.UserComment,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts harvested records to a JSON array of generic maps
// with numeric-looking string fields coerced.
func ExportToJSON(records []*models.ImageRecord, pretty bool) ([]byte, error) {
	maps := make([]map[string]any, 0, len(records))
	for _, record := range records {
		maps = append(maps, record.Map())
	}

	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(maps, "", "  ")
	} else {
		out, err = json.Marshal(maps)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}

	return out, nil
}
