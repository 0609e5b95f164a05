package static

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath  = errors.New("folder path is empty")
	ErrNotAFolder = errors.New("path is not a folder")
)

// Assets is the local folder served at the server root.
type Assets struct {
	folderPath string
}

func New(folderPath string) (*Assets, error) {
	const op = "storage.static.New"

	if strings.TrimSpace(folderPath) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyPath)
	}

	a := &Assets{folderPath: filepath.Clean(folderPath)}

	if err := a.ensureFolderExists(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (a *Assets) ensureFolderExists() error {
	info, err := os.Stat(a.folderPath)
	if os.IsNotExist(err) {
		return os.MkdirAll(a.folderPath, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotAFolder
	}

	return nil
}

func (a *Assets) Path() string {
	return a.folderPath
}

// Handler serves the folder contents; directory listings are not exposed.
func (a *Assets) Handler() http.Handler {
	return http.FileServer(noListingFS{http.Dir(a.folderPath)})
}

type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if info.IsDir() {
		index, err := n.fs.Open(strings.TrimSuffix(name, "/") + "/index.html")
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}

	return f, nil
}
