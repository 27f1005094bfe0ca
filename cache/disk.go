package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Disk is a Store keeping one JSON file per key in a folder.
//
// Files contain {"timestamp": <epoch millis>, "data": <value>}.
type Disk struct {
	Dir    string
	Now    func() time.Time // defaults to time.Now
	Logger *zap.Logger      // defaults to zap.L()
}

// NewDisk returns a Disk store in dir. An empty dir means a "cfund" folder in the user cache directory.
func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, "cfund")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache folder %q: %w", dir, err)
	}
	return &Disk{Dir: dir}, nil
}

func (d *Disk) file(key string) string {
	return filepath.Join(d.Dir, url.PathEscape(key)+".json")
}

func (d *Disk) Read(key string) (Entry, bool) {
	content, err := os.ReadFile(d.file(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger(d.Logger).Warn("cache read error (ignored)", zap.String("key", key), zap.Error(err))
		}
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(content, &e); err != nil {
		logger(d.Logger).Warn("corrupted cache file (ignored)", zap.String("file", d.file(key)), zap.Error(err))
		return Entry{}, false
	}
	return e, true
}

// Write stores the entry in a temporary file and renames it, so that readers never see a partial file.
func (d *Disk) Write(key string, data []byte) error {
	content, err := json.Marshal(Entry{Timestamp: stamp(d.Now), Data: data})
	if err != nil {
		return fmt.Errorf("cannot encode cache entry %q: %w", key, err)
	}
	f, err := os.CreateTemp(d.Dir, ".tmp-*")
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), d.file(key))
}

func (d *Disk) Clear(key string) error {
	err := os.Remove(d.file(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
