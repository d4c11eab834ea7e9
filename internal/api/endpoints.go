package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// Profiles

func (c *Client) ListProfiles(ctx context.Context) ([]Profile, error) {
	var out []Profile
	err := c.getJSON(ctx, "/api/profiles/", &out)
	return out, err
}

func (c *Client) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	var out Profile
	if err := c.getJSON(ctx, fmt.Sprintf("/api/profiles/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProfile(ctx context.Context, in ProfileInput) (*Profile, error) {
	var out Profile
	if err := c.sendJSON(ctx, http.MethodPost, "/api/profiles/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*Profile, error) {
	var out Profile
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/api/profiles/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProfile(ctx context.Context, id int64) error {
	return c.deleteJSON(ctx, fmt.Sprintf("/api/profiles/%d", id), nil)
}

func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.getJSON(ctx, "/api/profiles/stats/dashboard", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Uploads

// UploadFiles sends paths as a multipart form under "files".
func (c *Client) UploadFiles(ctx context.Context, profileID int64, paths []string) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("profile_id", strconv.FormatInt(profileID, 10)); err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}
	for _, p := range paths {
		if err := addFilePart(w, p); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/api/upload/multiple", &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func addFilePart(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	part, err := w.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func (c *Client) UploadProgress(ctx context.Context, taskID string) (*Progress, error) {
	var out Progress
	if err := c.getJSON(ctx, "/api/upload/progress/"+url.PathEscape(taskID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListFiles(ctx context.Context, profileID int64) ([]UploadedFile, error) {
	var out []UploadedFile
	err := c.getJSON(ctx, fmt.Sprintf("/api/upload/files/%d", profileID), &out)
	return out, err
}

func (c *Client) DeleteFile(ctx context.Context, fileID int64) error {
	return c.deleteJSON(ctx, fmt.Sprintf("/api/upload/file/%d", fileID), nil)
}

// Transcription

func (c *Client) TranscribeFile(ctx context.Context, fileID int64) (string, error) {
	var out TaskRef
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/api/transcribe/%d", fileID), nil, &out); err != nil {
		return "", err
	}
	return out.TaskID, nil
}

func (c *Client) TranscribeAll(ctx context.Context, profileID int64) (string, error) {
	var out TaskRef
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/api/transcribe/batch/%d", profileID), nil, &out); err != nil {
		return "", err
	}
	return out.TaskID, nil
}

func (c *Client) TranscriptionProgress(ctx context.Context, taskID string) (*Progress, error) {
	var out Progress
	if err := c.getJSON(ctx, "/api/transcribe/progress/"+url.PathEscape(taskID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TranscriptionResults(ctx context.Context, profileID int64) ([]Transcription, error) {
	var out []Transcription
	err := c.getJSON(ctx, fmt.Sprintf("/api/transcribe/results/%d", profileID), &out)
	return out, err
}

// Chat

func (c *Client) SendMessage(ctx context.Context, profileID int64, message string) (*ChatReply, error) {
	in := map[string]any{"profile_id": profileID, "user_message": message}
	var out ChatReply
	if err := c.sendJSON(ctx, http.MethodPost, "/api/chat/message", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChatHistory(ctx context.Context, profileID int64, limit int) ([]ChatEntry, error) {
	path := fmt.Sprintf("/api/chat/history/%d", profileID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []ChatEntry
	err := c.getJSON(ctx, path, &out)
	return out, err
}

func (c *Client) ClearChatHistory(ctx context.Context, profileID int64) (int, error) {
	var out ClearResult
	if err := c.deleteJSON(ctx, fmt.Sprintf("/api/chat/history/%d", profileID), &out); err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}

// ConversationSummary returns the backend's free-form summary record.
func (c *Client) ConversationSummary(ctx context.Context, profileID int64) (map[string]any, error) {
	var out map[string]any
	err := c.getJSON(ctx, fmt.Sprintf("/api/chat/summary/%d", profileID), &out)
	return out, err
}

// BuildPersona asks the backend to rebuild the persona and returns it raw.
func (c *Client) BuildPersona(ctx context.Context, profileID int64) (map[string]any, error) {
	var out map[string]any
	err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/api/chat/build-persona/%d", profileID), nil, &out)
	return out, err
}

func (c *Client) GenerateSpeech(ctx context.Context, in SpeechRequest) (*SpeechResult, error) {
	var out SpeechResult
	if err := c.sendJSON(ctx, http.MethodPost, "/api/tts/generate", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics

func (c *Client) Visualization(ctx context.Context, profileID int64) (*Visualization, error) {
	var out Visualization
	if err := c.getJSON(ctx, fmt.Sprintf("/api/visualize/data/%d", profileID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health pings /api/health, which answers without the usual envelope.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	const path = "/api/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, Path: path, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, Path: path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{Status: resp.StatusCode, Message: resp.Status}
	}
	var out Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Method: http.MethodGet, Path: path, Err: err}
	}
	return &out, nil
}
