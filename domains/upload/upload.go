package upload

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

// Filter is one entry of the native file dialog's type list.
type Filter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

var (
	ImageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}
	VideoExtensions = []string{"mp4", "mov", "avi", "mkv"}
)

// MediaFilters is the dialog filter set used for post attachments.
func MediaFilters() []Filter {
	return []Filter{
		{Name: "Images", Extensions: ImageExtensions},
		{Name: "Videos", Extensions: VideoExtensions},
	}
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func IsImage(name string) bool { return contains(ImageExtensions, extension(name)) }

func IsVideo(name string) bool { return contains(VideoExtensions, extension(name)) }

// IsMedia reports whether name has one of the accepted attachment extensions.
func IsMedia(name string) bool { return IsImage(name) || IsVideo(name) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Staged is the one file the user picked and has not yet submitted.
// Content never leaves the shell except as part of a schedule request.
type Staged struct {
	Ref           string `json:"ref"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	Size          int64  `json:"size"`
	Content       []byte `json:"-"`
	PreviewHandle string `json:"-"`
}

// PickedFile is what the UI receives after a successful pick.
type PickedFile struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	ContentBase64 string `json:"contentBase64"`
	Size          int64  `json:"size"`
	FileRef       string `json:"fileRef"`
	PreviewHandle string `json:"previewHandle,omitempty"`
}

func (s *Staged) Picked() PickedFile {
	return PickedFile{
		Path:          s.Path,
		Name:          s.Name,
		ContentBase64: base64.StdEncoding.EncodeToString(s.Content),
		Size:          s.Size,
		FileRef:       s.Ref,
		PreviewHandle: s.PreviewHandle,
	}
}
