package namespace

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/audit"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/shared/utils"
)

// Stored describes a completed upload.
type Stored struct {
	Name     string
	Size     int64
	Checksum string
}

// Download is an open file ready to be streamed. The caller closes File.
type Download struct {
	File        *os.File
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Close releases the file handle.
func (d *Download) Close() error { return d.File.Close() }

// Inspection is the admin view of a personal root.
type Inspection struct {
	Entries []Entry
	Usage   Usage
}

// List returns the ordered entries of the referenced directory, optionally
// filtered by a glob pattern.
func (s *Service) List(ctx context.Context, who Identity, cat Category, rel, match string) ([]Entry, error) {
	const op = "list"
	if match != "" && !doublestar.ValidatePattern(match) {
		return nil, violation(op, cat, rel, "invalid match pattern %q", match)
	}
	loc, err := s.resolver.Resolve(cat, who.Username, rel)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	entries, err := List(loc.Dir)
	if err == nil {
		entries, err = Filter(entries, match)
	}
	if err != nil {
		err = classify(op, loc, "", err)
		entries = nil
	}
	return entries, s.finish(ctx, who, audit.ActionListFiles, start, describe(loc), err)
}

// CreateFolder creates folderName under the referenced directory, creating
// missing intermediate directories. An existing target is never reused.
func (s *Service) CreateFolder(ctx context.Context, who Identity, cat Category, rel, folderName string) error {
	const op = "create folder"
	if err := checkName(op, Location{Category: cat, Rel: rel}, folderName); err != nil {
		return err
	}
	loc, err := s.resolver.Resolve(cat, who.Username, rel)
	if err != nil {
		return err
	}
	start := time.Now()

	err = s.createFolder(loc, folderName)
	if err != nil {
		err = classify(op, loc, folderName, err)
	}
	return s.finish(ctx, who, audit.ActionCreateFolder, start, describe(loc, folderName), err)
}

func (s *Service) createFolder(loc Location, name string) error {
	unlock := s.locks.lock(loc.Dir)
	defer unlock()

	if err := os.MkdirAll(loc.Dir, dirPerm); err != nil {
		return err
	}
	return os.Mkdir(loc.Path(name), dirPerm)
}

// StoreUpload writes r under a collision-free name derived from desiredName
// and returns the stored name. Existing files are never overwritten: if the
// allocated name is taken before the file is created, the upload fails with
// KindAlreadyExists.
func (s *Service) StoreUpload(ctx context.Context, who Identity, cat Category, rel, desiredName string, r io.Reader) (Stored, error) {
	const op = "upload"
	if err := checkName(op, Location{Category: cat, Rel: rel}, desiredName); err != nil {
		return Stored{}, err
	}
	loc, err := s.resolver.Resolve(cat, who.Username, rel)
	if err != nil {
		return Stored{}, err
	}
	start := time.Now()

	stored, err := s.storeUpload(ctx, loc, desiredName, r)
	details := describe(loc, desiredName)
	if err != nil {
		err = classify(op, loc, desiredName, err)
	} else {
		if stored.Name != desiredName {
			details = describe(loc, desiredName+" as "+stored.Name)
		}
		if s.metrics != nil {
			s.metrics.RecordUploadBytes(stored.Size)
		}
	}
	return stored, s.finish(ctx, who, audit.ActionUploadFile, start, details, err)
}

func (s *Service) storeUpload(ctx context.Context, loc Location, desired string, r io.Reader) (Stored, error) {
	unlock := s.locks.lock(loc.Dir)
	defer unlock()

	if err := ensureDir(loc.Dir); err != nil {
		return Stored{}, err
	}
	name, err := Allocate(loc.Dir, desired)
	if err != nil {
		return Stored{}, err
	}

	path := loc.Path(name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return Stored{}, err
	}

	digest := utils.DefaultHasher().New()
	n, err := io.Copy(io.MultiWriter(f, digest), &contextReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return Stored{}, err
	}

	return Stored{Name: name, Size: n, Checksum: hex.EncodeToString(digest.Sum(nil))}, nil
}

// DeleteEntry removes a file, or a folder with everything below it.
func (s *Service) DeleteEntry(ctx context.Context, who Identity, cat Category, rel, name string) error {
	const op = "delete"
	if err := checkName(op, Location{Category: cat, Rel: rel}, name); err != nil {
		return err
	}
	loc, err := s.resolver.Resolve(cat, who.Username, rel)
	if err != nil {
		return err
	}
	start := time.Now()

	err = s.deleteEntry(loc, name)
	if err != nil {
		err = classify(op, loc, name, err)
	}
	return s.finish(ctx, who, audit.ActionDeleteFile, start, describe(loc, name), err)
}

func (s *Service) deleteEntry(loc Location, name string) error {
	unlock := s.locks.lock(loc.Dir)
	defer unlock()

	path := loc.Path(name)
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// RenameEntry renames oldName to newName inside the referenced directory.
// It never replaces an existing entry.
func (s *Service) RenameEntry(ctx context.Context, who Identity, cat Category, rel, oldName, newName string) error {
	const op = "rename"
	if err := checkName(op, Location{Category: cat, Rel: rel}, oldName); err != nil {
		return err
	}
	if err := checkName(op, Location{Category: cat, Rel: rel}, newName); err != nil {
		return err
	}
	loc, err := s.resolver.Resolve(cat, who.Username, rel)
	if err != nil {
		return err
	}
	start := time.Now()

	err = s.renameEntry(loc, oldName, newName)
	if err != nil {
		err = classify(op, loc, oldName, err)
	}
	return s.finish(ctx, who, audit.ActionRenameFile, start, describe(loc, oldName, newName), err)
}

func (s *Service) renameEntry(loc Location, oldName, newName string) error {
	unlock := s.locks.lock(loc.Dir)
	defer unlock()

	if _, err := os.Lstat(loc.Path(oldName)); err != nil {
		return err
	}
	_, err := os.Lstat(loc.Path(newName))
	switch {
	case err == nil:
		return newError(KindAlreadyExists, "rename", loc, newName)
	case !errors.Is(err, fs.ErrNotExist):
		return classify("rename", loc, newName, err)
	}
	return os.Rename(loc.Path(oldName), loc.Path(newName))
}

// Download opens a regular file for reading. Folders, symlinks and special
// files are reported as not found.
func (s *Service) Download(ctx context.Context, who Identity, cat Category, rel, name string) (*Download, error) {
	const op = "download"
	if err := checkName(op, Location{Category: cat, Rel: rel}, name); err != nil {
		return nil, err
	}
	loc, err := s.resolver.Resolve(cat, who.Username, rel)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	dl, err := openDownload(loc.Path(name), name)
	if err != nil {
		err = classify(op, loc, name, err)
	}
	return dl, s.finish(ctx, who, audit.ActionDownloadFile, start, describe(loc, name), err)
}

func openDownload(path, name string) (*Download, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectReader(f); err == nil {
		contentType = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	return &Download{
		File:        f,
		Name:        name,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: contentType,
	}, nil
}

// Archive streams the referenced folder to w as a compressed tar.
func (s *Service) Archive(ctx context.Context, who Identity, cat Category, rel, name string, format ArchiveFormat, w io.Writer) error {
	const op = "archive"
	if err := checkName(op, Location{Category: cat, Rel: rel}, name); err != nil {
		return err
	}
	loc, err := s.resolver.Resolve(cat, who.Username, rel)
	if err != nil {
		return err
	}
	start := time.Now()

	err = archiveFolder(ctx, loc.Path(name), format, w)
	if err != nil {
		err = classify(op, loc, name, err)
	}
	return s.finish(ctx, who, audit.ActionDownloadArchive, start, describe(loc, name+format.Extension()), err)
}

func archiveFolder(ctx context.Context, dir string, format ArchiveFormat, w io.Writer) error {
	info, err := os.Lstat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "archive", Path: dir, Err: syscall.ENOTDIR}
	}
	return WriteArchive(ctx, w, dir, format)
}

// InspectPersonalRoot lists the personal root of username for
// administrators. A missing root yields an empty result and is not created.
func (s *Service) InspectPersonalRoot(ctx context.Context, username string) (Inspection, error) {
	root, err := s.resolver.PersonalRoot(username)
	if err != nil {
		return Inspection{}, violation("inspect", Personal, "", "%v", err)
	}
	loc := Location{Category: Personal, Root: root, Dir: root}

	entries, err := List(root)
	if errors.Is(err, fs.ErrNotExist) {
		return Inspection{Entries: []Entry{}}, nil
	}
	if err != nil {
		return Inspection{}, classify("inspect", loc, "", err)
	}

	usage, err := DiskUsage(ctx, root)
	if err != nil {
		return Inspection{}, classify("inspect", loc, "", err)
	}
	return Inspection{Entries: entries, Usage: usage}, nil
}

// RemovePersonalRoot deletes the personal root of username and everything
// in it. Removing a missing root is not an error.
func (s *Service) RemovePersonalRoot(ctx context.Context, username string) error {
	root, err := s.resolver.PersonalRoot(username)
	if err != nil {
		return violation("remove personal root", Personal, "", "%v", err)
	}

	unlock := s.locks.lock(root)
	defer unlock()

	if err := os.RemoveAll(root); err != nil {
		return classify("remove personal root", Location{Category: Personal, Root: root, Dir: root}, "", err)
	}
	s.logger.Info("personal root removed", zap.String("username", username))
	return nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
