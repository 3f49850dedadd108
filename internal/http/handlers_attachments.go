package http

import (
	"errors"
	"net/http"

	"medrecords/internal/attach"
	"medrecords/internal/log"
)

// handleEncodeAttachment turns an uploaded image into the inline payload the
// caller then stores on a record via add or update. The encode runs as a
// pending operation tied to the request context, so a client disconnect
// abandons it cleanly.
func (s *Server) handleEncodeAttachment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	pending := s.encoder.Start(r.Context(), file, mediaType)
	payload, err := pending.Wait(r.Context())
	if err != nil {
		s.writeAttachmentError(w, r, mediaType, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": payload})
}

func (s *Server) writeAttachmentError(w http.ResponseWriter, r *http.Request, mediaType string, err error) {
	switch {
	case errors.Is(err, attach.ErrUnsupportedAttachment):
		writeError(w, http.StatusUnsupportedMediaType, "only image uploads are supported")
	case errors.Is(err, attach.ErrAttachmentTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
	default:
		s.logger.ErrorContext(r.Context(), "Attachment encode failed",
			log.FieldOperation, log.OpEncode,
			log.FieldMediaType, mediaType,
			log.FieldError, err.Error())
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
	}
}
