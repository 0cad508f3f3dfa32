package http

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/api/middleware"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/namespace"
)

// EntryResponse is the wire form of a directory entry.
type EntryResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	// Modified is seconds since the epoch with fractional part.
	Modified float64 `json:"modified"`
	Type     string  `json:"type"`
}

func toEntryResponses(entries []namespace.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			Name:     e.Name,
			Size:     e.Size,
			Modified: float64(e.ModifiedAt.UnixNano()) / 1e9,
			Type:     e.Kind.String(),
		})
	}
	return out
}

// ListFiles lists a directory: folders first, then files.
func (h *Handlers) ListFiles(c *gin.Context) {
	cat, err := namespace.ParseCategory(c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}

	entries, err := h.files.List(c.Request.Context(), middleware.CurrentIdentity(c), cat, c.Query("path"), c.Query("match"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toEntryResponses(entries))
}

// UploadFile streams the multipart "file" field into the directory. The
// stored name may differ from the uploaded one when it was taken.
func (h *Handlers) UploadFile(c *gin.Context) {
	cat, err := namespace.ParseCategory(c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		badRequest(c, "expected multipart/form-data")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			badRequest(c, "missing file field")
			return
		}
		if err != nil {
			if _, kind := statusOf(err); kind == kindTooLarge {
				h.fail(c, err)
				return
			}
			badRequest(c, "malformed multipart body")
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		stored, err := h.files.StoreUpload(c.Request.Context(), middleware.CurrentIdentity(c), cat, c.Query("path"), part.FileName(), part)
		part.Close()
		if err != nil {
			h.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "success",
			"filename": stored.Name,
			"size":     stored.Size,
			"checksum": stored.Checksum,
		})
		return
	}
}

// DeleteFile removes a file or a folder tree.
func (h *Handlers) DeleteFile(c *gin.Context) {
	cat, err := namespace.ParseCategory(c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.files.DeleteEntry(c.Request.Context(), middleware.CurrentIdentity(c), cat, c.Query("path"), c.Param("filename")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DownloadFile streams a regular file as an attachment, always whole.
func (h *Handlers) DownloadFile(c *gin.Context) {
	cat, err := namespace.ParseCategory(c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}

	dl, err := h.files.Download(c.Request.Context(), middleware.CurrentIdentity(c), cat, c.Query("path"), c.Param("filename"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer dl.Close()

	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl.File, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": dl.Name}),
		"Last-Modified":       dl.ModTime.UTC().Format(http.TimeFormat),
	})
}

// DownloadArchive streams a folder as a compressed tar.
func (h *Handlers) DownloadArchive(c *gin.Context) {
	cat, err := namespace.ParseCategory(c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	format, err := namespace.ParseArchiveFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	name := c.Param("name")
	w := &archiveWriter{c: c, filename: name + format.Extension(), contentType: format.ContentType()}
	err = h.files.Archive(c.Request.Context(), middleware.CurrentIdentity(c), cat, c.Query("path"), name, format, w)
	switch {
	case err == nil:
		w.start()
	case !w.started:
		h.fail(c, err)
	default:
		// Headers are gone; the client sees a truncated stream.
		h.logger.Warn("archive stream aborted",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("name", name),
			zap.Error(err),
		)
		c.Abort()
	}
}

// archiveWriter sends the response headers on the first write so that
// failures before any output still get a proper error status.
type archiveWriter struct {
	c           *gin.Context
	filename    string
	contentType string
	started     bool
}

func (w *archiveWriter) start() {
	if w.started {
		return
	}
	w.started = true
	w.c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": w.filename}))
	w.c.Header("Content-Type", w.contentType)
	w.c.Status(http.StatusOK)
	w.c.Writer.WriteHeaderNow()
}

func (w *archiveWriter) Write(p []byte) (int, error) {
	w.start()
	return w.c.Writer.Write(p)
}

type renameRequest struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
	Path    string `json:"path"`
}

// RenameFile renames an entry within one directory.
func (h *Handlers) RenameFile(c *gin.Context) {
	cat, err := namespace.ParseCategory(c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid rename request: "+err.Error())
		return
	}

	if err := h.files.RenameEntry(c.Request.Context(), middleware.CurrentIdentity(c), cat, req.Path, req.OldName, req.NewName); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "renamed"})
}

type folderRequest struct {
	FolderName string `json:"folderName"`
	Path       string `json:"path"`
}

// CreateFolder creates a folder, with missing intermediate directories.
func (h *Handlers) CreateFolder(c *gin.Context) {
	cat, err := namespace.ParseCategory(c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid folder request: "+err.Error())
		return
	}

	if err := h.files.CreateFolder(c.Request.Context(), middleware.CurrentIdentity(c), cat, req.Path, req.FolderName); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "folder created"})
}
