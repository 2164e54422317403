package domain

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// MaxResumes bounds a user's résumé collection.
const MaxResumes = 10

var (
	ErrResumeLimit    = errors.New("resume limit reached")
	ErrResumeNotFound = errors.New("resume not found")
)

type Resume struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	StorageID      string    `json:"-"`
	Size           int64     `json:"size"`
	MimeType       string    `json:"mime_type"`
	Extension      string    `json:"extension"`
	UploadedAt     time.Time `json:"uploaded_at"`
	IsPrimary      bool      `json:"is_primary"`
	IsDownloadable bool      `json:"is_downloadable"`
}

// ResumeUpload is a file received from a client, before it is stored.
type ResumeUpload struct {
	Filename string
	Data     []byte
	ClientIP string
}

// StoredObject identifies a blob written to external storage.
type StoredObject struct {
	URL       string `json:"url"`
	StorageID string `json:"storage_id"`
}

type BlobStorage interface {
	Upload(ctx context.Context, data []byte, filename, kind string) (*StoredObject, error)
	Delete(ctx context.Context, storageID string) error
}

type ResumeUsecase interface {
	List(ctx context.Context, actor Identity, userID string) ([]Resume, error)
	Add(ctx context.Context, actor Identity, userID string, upload ResumeUpload) (*User, error)
	Remove(ctx context.Context, actor Identity, userID, resumeID string) (*User, error)
	SetPrimary(ctx context.Context, actor Identity, userID, resumeID string) (*User, error)
	SetDownloadable(ctx context.Context, actor Identity, userID, resumeID string, downloadable bool) (*User, error)
}

// AppendResume adds r to the end of list. The first résumé of an empty list
// becomes primary; later ones never do.
func AppendResume(list []Resume, r Resume) ([]Resume, error) {
	if len(list) >= MaxResumes {
		return list, ErrResumeLimit
	}
	r.IsPrimary = len(list) == 0
	out := make([]Resume, 0, len(list)+1)
	out = append(out, list...)
	return append(out, r), nil
}

// RemoveResume drops the entry with the given id. A removed primary is not
// replaced; callers choose the next primary explicitly.
func RemoveResume(list []Resume, id string) ([]Resume, Resume, error) {
	idx := indexOfResume(list, id)
	if idx < 0 {
		return list, Resume{}, ErrResumeNotFound
	}
	removed := list[idx]
	out := make([]Resume, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out, removed, nil
}

// SetPrimaryResume returns a copy of list where only id is primary.
func SetPrimaryResume(list []Resume, id string) ([]Resume, error) {
	if indexOfResume(list, id) < 0 {
		return list, ErrResumeNotFound
	}
	out := make([]Resume, len(list))
	for i, r := range list {
		r.IsPrimary = r.ID == id
		out[i] = r
	}
	return out, nil
}

// SetResumeDownloadable changes one entry's flag and leaves the rest untouched.
func SetResumeDownloadable(list []Resume, id string, downloadable bool) ([]Resume, error) {
	idx := indexOfResume(list, id)
	if idx < 0 {
		return list, ErrResumeNotFound
	}
	out := make([]Resume, len(list))
	copy(out, list)
	out[idx].IsDownloadable = downloadable
	return out, nil
}

func PrimaryResume(list []Resume) (Resume, bool) {
	for _, r := range list {
		if r.IsPrimary {
			return r, true
		}
	}
	return Resume{}, false
}

// ResumeExtension derives the display extension ("PDF", "DOCX") from a filename.
func ResumeExtension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return strings.ToUpper(ext)
}

// MirrorLatestResume points the legacy single-résumé fields at the most
// recent entry, or clears them when the list is empty.
func (u *User) MirrorLatestResume() {
	if len(u.Resumes) == 0 {
		u.ResumeURL = ""
		u.ResumeStorageID = ""
		u.ResumeDownloadable = false
		return
	}
	latest := u.Resumes[len(u.Resumes)-1]
	u.ResumeURL = latest.URL
	u.ResumeStorageID = latest.StorageID
	u.ResumeDownloadable = latest.IsDownloadable
}

// ReferencesStorage reports whether any résumé entry points at storageID.
func (u *User) ReferencesStorage(storageID string) bool {
	for _, r := range u.Resumes {
		if r.StorageID == storageID {
			return true
		}
	}
	return false
}

func indexOfResume(list []Resume, id string) int {
	for i, r := range list {
		if r.ID == id {
			return i
		}
	}
	return -1
}
