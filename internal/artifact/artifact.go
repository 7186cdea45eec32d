// Package artifact checks that the model file a run depends on is present
// and reads what it can from its GGUF header.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	gguf "github.com/gpustack/gguf-parser-go"
)

// ErrMissingArtifact matches every MissingArtifactError.
var ErrMissingArtifact = errors.New("model artifact not found")

// MissingArtifactError reports the path where the model was expected.
type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("Model not found at %s", e.Path)
}

func (e *MissingArtifactError) Is(target error) bool {
	return target == ErrMissingArtifact
}

// Info describes an artifact found on disk.
type Info struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Check stats path. A missing path or an empty one yields a
// *MissingArtifactError; other stat failures are returned wrapped. Both files
// and model directories are accepted.
func Check(path string) (Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, &MissingArtifactError{Path: "(no model path configured)"}
	}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, &MissingArtifactError{Path: path}
		}
		return Info{}, fmt.Errorf("stat model %q: %w", path, err)
	}
	return Info{Path: path, Size: st.Size(), ModTime: st.ModTime(), IsDir: st.IsDir()}, nil
}

// Metadata is the subset of the GGUF header shown to users.
type Metadata struct {
	Name          string
	Architecture  string
	FileType      string
	Parameters    string
	ContextLength uint64
}

// Inspect parses the GGUF header of the file at path.
func Inspect(path string) (Metadata, error) {
	if !strings.EqualFold(filepath.Ext(path), ".gguf") {
		return Metadata{}, fmt.Errorf("inspect %q: not a .gguf file", path)
	}
	f, err := gguf.ParseGGUFFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("inspect %q: %w", path, err)
	}
	md := f.Metadata()
	return Metadata{
		Name:          md.Name,
		Architecture:  md.Architecture,
		FileType:      md.FileType.String(),
		Parameters:    md.Parameters.String(),
		ContextLength: f.Architecture().MaximumContextLength,
	}, nil
}
