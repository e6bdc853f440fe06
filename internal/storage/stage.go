package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Public sub-directories below the upload root.
const (
	PropertiesDir = "uploads/properties"
	ProfilesDir   = "uploads/profiles"
	stagingDir    = ".staging"
)

// Disk is the upload root on the local filesystem.  Stored paths are
// relative to it and always use forward slashes.
type Disk struct {
	root     string
	maxBytes int64
}

// NewDisk prepares the upload tree below root.
func NewDisk(root string, maxBytes int64) (*Disk, error) {
	for _, dir := range []string{PropertiesDir, ProfilesDir, stagingDir} {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755); err != nil {
			return nil, fmt.Errorf("prepare %s: %w", dir, err)
		}
	}
	return &Disk{root: root, maxBytes: maxBytes}, nil
}

// Root returns the directory that contains uploads/.
func (d *Disk) Root() string { return d.root }

// MaxBytes is the per-file upload limit.
func (d *Disk) MaxBytes() int64 { return d.maxBytes }

// abs maps a stored relative path to the filesystem, refusing anything that
// would escape the public uploads tree.
func (d *Disk) abs(rel string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(rel, "/"))
	if clean == "." || !strings.HasPrefix(clean, "uploads/") {
		return "", fmt.Errorf("path outside uploads: %q", rel)
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

// Remove deletes a stored file.  A file that is already gone is not an error.
func (d *Disk) Remove(rel string) error {
	p, err := d.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether a stored file is present.
func (d *Disk) Exists(rel string) bool {
	p, err := d.abs(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

type staged struct {
	tmp   string
	final string
	rel   string
}

// Batch collects files staged for one database transaction.  Exactly one
// of Commit or Discard must be called.
type Batch struct {
	disk  *Disk
	files []staged
}

func (d *Disk) NewBatch() *Batch { return &Batch{disk: d} }

// Stage validates u and copies it into the staging area under a fresh name
// "<prefix><uuid><ext>" destined for dir.  It returns the relative path the
// file will have once committed.
func (b *Batch) Stage(u Upload, dir, prefix string) (string, error) {
	ext, err := Inspect(u, b.disk.maxBytes)
	if err != nil {
		return "", err
	}
	name := prefix + uuid.NewString() + ext
	rel := path.Join(dir, name)
	final, err := b.disk.abs(rel)
	if err != nil {
		return "", err
	}
	tmp := filepath.Join(b.disk.root, stagingDir, name)

	src, err := u.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	limit := b.disk.maxBytes
	var n int64
	if limit > 0 {
		n, err = io.Copy(dst, io.LimitReader(src, limit+1))
	} else {
		n, err = io.Copy(dst, src)
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && limit > 0 && n > limit {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	b.files = append(b.files, staged{tmp: tmp, final: final, rel: rel})
	return rel, nil
}

// Paths lists the committed-to-be relative paths in staging order.
func (b *Batch) Paths() []string {
	out := make([]string, len(b.files))
	for i, f := range b.files {
		out[i] = f.rel
	}
	return out
}

// Len is the number of staged files.
func (b *Batch) Len() int { return len(b.files) }

// Keep drops staged files from position n onward; used when only the first
// n fit the remaining capacity.
func (b *Batch) Keep(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(b.files) {
		return
	}
	for _, f := range b.files[n:] {
		_ = os.Remove(f.tmp)
	}
	b.files = b.files[:n]
}

// Commit moves every staged file into place.  All moves are attempted; the
// returned error lists the ones that failed.
func (b *Batch) Commit() error {
	var errs []error
	for _, f := range b.files {
		if err := os.Rename(f.tmp, f.final); err != nil {
			errs = append(errs, fmt.Errorf("promote %s: %w", f.rel, err))
			_ = os.Remove(f.tmp)
		}
	}
	b.files = nil
	return errors.Join(errs...)
}

// Discard deletes all staged files.
func (b *Batch) Discard() {
	for _, f := range b.files {
		_ = os.Remove(f.tmp)
	}
	b.files = nil
}
