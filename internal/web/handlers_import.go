package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/ceap/internal/core"
)

// handleImport streams the uploaded CSV straight into the importer. The
// request body is never buffered, so memory stays at one batch regardless of
// file size.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)

	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", errNoFile, err), http.StatusBadRequest)
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		respondError(w, r, uploadError(err), statusFor(uploadError(err)))
		return
	}
	defer part.Close()

	ctx := core.ContextWithSource(r.Context(), core.Source{
		ClientIP:  r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	result, err := s.importer.Import(ctx, part.FileName(), &uploadReader{r: part}, 0)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, result)
}

// nextFilePart skips form fields until the first file part.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoFile
		}
		if err != nil {
			return nil, err
		}
		if part.FileName() != "" || part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}

// uploadError translates body read failures into import errors.
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: body exceeds %d bytes", core.ErrFileTooLarge, maxErr.Limit)
	}
	if errors.Is(err, errNoFile) {
		return err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", core.ErrUploadInterrupted, err)
	}
	return fmt.Errorf("%w: %w", errNoFile, err)
}

// uploadReader reports an oversized body as core.ErrFileTooLarge and a body
// that stops before the closing boundary as core.ErrUploadInterrupted.
type uploadReader struct {
	r io.Reader
}

func (u *uploadReader) Read(p []byte) (int, error) {
	n, err := u.r.Read(p)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return n, fmt.Errorf("%w: body exceeds %d bytes", core.ErrFileTooLarge, maxErr.Limit)
	}
	return n, fmt.Errorf("%w: %w", core.ErrUploadInterrupted, err)
}
