package http

import (
	"errors"
	"net/http"
	"strings"

	"medrecords/internal/core"
	"medrecords/internal/log"
)

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRecords(w, r)
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleListRecords serves the snapshot, optionally narrowed by the search
// and range query parameters and re-ordered by recency.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records := s.records.List()
	q := r.URL.Query()

	if term := q.Get("search"); term != "" {
		records = core.Search(records, term)
	}

	now := s.now()
	switch q.Get("range") {
	case "":
	case "today":
		records = core.Today(records, now)
	case "week":
		records = core.ThisWeek(records, now)
	case "month":
		records = core.ThisMonth(records, now)
	default:
		writeError(w, http.StatusBadRequest, "unknown range; use today, week or month")
		return
	}

	if q.Get("sort") == "recent" {
		records = core.SortedByRecency(records)
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var draft core.Draft
	if err := readJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	rec, err := s.records.Add(r.Context(), draft)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Record create failed",
			log.FieldOperation, log.OpAdd,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to save record")
		return
	}

	s.dashCache.Purge()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := s.records.Get(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case http.MethodPut:
		var patch core.Patch
		if err := readJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := patch.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "title cannot be blank")
			return
		}
		rec, err := s.records.Update(r.Context(), id, patch)
		if err != nil {
			s.writeMutationError(w, r, log.OpUpdate, id, err)
			return
		}
		s.dashCache.Purge()
		writeJSON(w, http.StatusOK, rec)

	case http.MethodDelete:
		// Irreversible; the frontend confirms with the user before calling.
		if err := s.records.Remove(r.Context(), id); err != nil {
			s.writeMutationError(w, r, log.OpRemove, id, err)
			return
		}
		s.dashCache.Purge()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}

func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, op, id string, err error) {
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	s.logger.ErrorContext(r.Context(), "Record mutation failed",
		log.FieldOperation, op,
		log.FieldRecordID, id,
		log.FieldError, err.Error())
	writeError(w, http.StatusInternalServerError, "failed to save record")
}
