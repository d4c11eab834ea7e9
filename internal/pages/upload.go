package pages

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/heartbeat"
	"github.com/ajramos/evtui/internal/services"
	"github.com/ajramos/evtui/internal/tasks"
	"github.com/ajramos/evtui/internal/view"
)

// Upload page regions
const (
	RegionUploadFiles    = "upload-files"
	RegionUploadProgress = "upload-progress"
)

// Upload sends memory files for the active profile and tracks their
// processing.
type Upload struct {
	d     *Deps
	files *view.Renderer[api.UploadedFile]
}

// NewUpload creates the upload module.
func NewUpload(d *Deps) *Upload {
	return &Upload{
		d: d,
		files: &view.Renderer[api.UploadedFile]{
			Region:     RegionUploadFiles,
			Registry:   d.Regions,
			Collection: d.Files,
			Format:     func(items []api.UploadedFile) string { return formatFiles(items, d.LabelWidth) },
			EmptyText:  "No files yet. Press f to add files.",
		},
	}
}

func (u *Upload) Initialize(ctx context.Context) error {
	if _, ok := u.d.activeProfile(); !ok {
		u.d.write(RegionUploadFiles, noProfileText)
		u.d.write(RegionUploadProgress, "")
		return nil
	}
	if u.d.Files.Len() > 0 {
		u.render()
	} else {
		u.d.loading(RegionUploadFiles, "Loading files...")
	}
	u.d.write(RegionUploadProgress, "Idle")
	u.d.spawn(func() { u.reload(ctx) })
	return nil
}

func (u *Upload) Refresh(ctx context.Context) error {
	return u.Initialize(ctx)
}

// Target keeps the file list repaired by the heartbeat.
func (u *Upload) Target() heartbeat.Target {
	return &heartbeat.CollectionTarget[api.UploadedFile]{
		Renderer: u.files,
		Spawn:    u.d.Go,
		Logger:   u.d.Logger,
	}
}

// Upload sends paths for the active profile and polls the processing job.
// Files the backend rejects are reported as a warning. The returned handle
// is nil when the backend started no job.
func (u *Upload) Upload(ctx context.Context, paths []string) (*tasks.Handle, error) {
	id, err := u.d.requireProfile()
	if err != nil {
		return nil, u.d.report(ctx, err)
	}
	clean := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		err := fmt.Errorf("no files given: %w", services.ErrInvalidInput)
		return nil, u.d.report(ctx, err)
	}

	res, err := u.d.FileSvc.Upload(ctx, id, clean)
	if err != nil {
		return nil, u.d.report(ctx, err)
	}
	if n := len(res.FailedUploads); n > 0 {
		names := make([]string, 0, n)
		for _, f := range res.FailedUploads {
			names = append(names, filepath.Base(f.Filename))
		}
		u.d.notifyWarning(ctx, fmt.Sprintf("%d file(s) rejected: %s", n, strings.Join(names, ", ")))
	}
	if res.TaskID == "" {
		u.d.spawn(func() { u.reload(ctx) })
		return nil, nil
	}
	u.d.write(RegionUploadProgress, fmt.Sprintf("Uploading %d file(s)...", len(res.UploadedFiles)))
	return u.track(ctx, res.TaskID, services.KindUpload, "Upload"), nil
}

// TranscribeFile starts transcription of one file and polls it.
func (u *Upload) TranscribeFile(ctx context.Context, fileID int64) (*tasks.Handle, error) {
	taskID, err := u.d.Transcriber.TranscribeFile(ctx, fileID)
	if err != nil {
		return nil, u.d.report(ctx, err)
	}
	u.d.write(RegionUploadProgress, "Transcription queued")
	return u.track(ctx, taskID, services.KindTranscription, "Transcription"), nil
}

// DeleteFile removes a file after confirmation.
func (u *Upload) DeleteFile(ctx context.Context, fileID int64) (bool, error) {
	name := fmt.Sprintf("file #%d", fileID)
	if f, ok := u.d.Files.Find(func(f api.UploadedFile) bool { return f.ID == fileID }); ok {
		name = f.Filename
	}
	if !u.d.confirm(ctx, fmt.Sprintf("Delete %s?", name)) {
		return false, nil
	}
	if err := u.d.FileSvc.DeleteFile(ctx, fileID); err != nil {
		return false, u.d.report(ctx, err)
	}
	u.reload(ctx)
	u.d.notifySuccess(ctx, fmt.Sprintf("Deleted %s", name))
	return true, nil
}

func (u *Upload) track(ctx context.Context, taskID, kind, title string) *tasks.Handle {
	return u.d.Poller.Start(ctx, taskID, kind, u.d.PollInterval, tasks.Callbacks{
		OnProgress: func(up tasks.Update) {
			u.d.write(RegionUploadProgress, formatProgress(title, up))
		},
		OnComplete: func(tasks.Task) {
			u.d.write(RegionUploadProgress, title+" complete")
			u.d.spawn(func() { u.reload(ctx) })
		},
		OnFailed: func(_ tasks.Task, msg string) {
			if msg == "" {
				msg = "unknown error"
			}
			u.d.write(RegionUploadProgress, fmt.Sprintf("%s failed: %s", title, msg))
			u.d.notifyError(ctx, fmt.Sprintf("%s failed: %s", title, msg))
		},
	})
}

func (u *Upload) reload(ctx context.Context) {
	if err := refreshCollection(ctx, u.d.Files); err != nil {
		u.d.logf("upload: refresh files: %v", err)
		return
	}
	u.render()
}

func (u *Upload) render() {
	if err := u.files.Render(); err != nil {
		u.d.logf("upload: %v", err)
	}
}
