package lostfound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// UploadFile uploads one file as multipart form data and returns the stored
// file's metadata. The content is buffered so a retry after token refresh
// re-sends the identical body.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (*Upload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}

	env, err := c.call(ctx, http.MethodPost, "/upload", func(req *resty.Request) {
		req.SetFileReader("file", filename, bytes.NewReader(data))
	})
	if err != nil {
		return nil, err
	}

	var upload Upload
	if err := json.Unmarshal(env.Data, &upload); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	return &upload, nil
}
