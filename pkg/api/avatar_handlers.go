package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/platinummonkey/teamboard/pkg/avatars"
	"github.com/platinummonkey/teamboard/pkg/httputil"
)

// avatarField is the multipart form field carrying the image
const avatarField = "file"

// getAvatar handles GET /auth/avatar/{nip}
func (s *Server) getAvatar(w http.ResponseWriter, r *http.Request) {
	nip, ok := httputil.ParsePathStringOrError(w, r, "nip")
	if !ok {
		return
	}

	avatar, err := s.deps.Avatars.Get(r.Context(), nip)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, avatar)
}

// uploadAvatar handles POST /auth/avatar/{nip}
func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	nip, ok := httputil.ParsePathStringOrError(w, r, "nip")
	if !ok {
		return
	}

	upload, err := readUpload(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	avatar, err := s.deps.Avatars.Upload(r.Context(), nip, upload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteCreated(w, avatar)
}

// replaceAvatar handles PUT /auth/avatar/{nip}
func (s *Server) replaceAvatar(w http.ResponseWriter, r *http.Request) {
	nip, ok := httputil.ParsePathStringOrError(w, r, "nip")
	if !ok {
		return
	}

	upload, err := readUpload(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	avatar, err := s.deps.Avatars.Replace(r.Context(), nip, upload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, avatar)
}

// deleteAvatar handles DELETE /auth/avatar/{nip}
func (s *Server) deleteAvatar(w http.ResponseWriter, r *http.Request) {
	nip, ok := httputil.ParsePathStringOrError(w, r, "nip")
	if !ok {
		return
	}

	if err := s.deps.Avatars.Delete(r.Context(), nip); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}

// readUpload pulls the avatar file out of a multipart request. Anything past
// MaxSize is read as one extra byte so the service can reject it.
func readUpload(r *http.Request) (avatars.Upload, error) {
	if err := r.ParseMultipartForm(avatars.MaxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return avatars.Upload{}, fmt.Errorf("%w: request body too large", avatars.ErrInvalidUpload)
		}
		return avatars.Upload{}, fmt.Errorf("%w: expected multipart form: %v", httputil.ErrBadRequest, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(avatarField)
	if err != nil {
		return avatars.Upload{}, fmt.Errorf("%w: missing form field %q", httputil.ErrBadRequest, avatarField)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, avatars.MaxSize+1))
	if err != nil {
		return avatars.Upload{}, fmt.Errorf("%w: failed to read upload: %v", httputil.ErrBadRequest, err)
	}

	return avatars.Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	}, nil
}
