package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/gaslog/internal/auth"
	"github.com/JonMunkholm/gaslog/internal/core"
)

// maxJSONBody bounds request bodies of the JSON endpoints.
const maxJSONBody = 1 << 20

// multipartOverhead leaves room for the form fields next to the file.
const multipartOverhead = 1 << 20

// userStore opens the signed-in user's store, writing the error response
// itself when that fails.
func (s *Server) userStore(w http.ResponseWriter, r *http.Request) (UserStore, *auth.Session, bool) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		s.respondError(w, r, auth.ErrNoSession, http.StatusUnauthorized)
		return nil, nil, false
	}
	store, err := s.openStore(r.Context(), sess)
	if err != nil {
		s.respondError(w, r, err, 0)
		return nil, nil, false
	}
	return store, sess, true
}

// decodeJSON reads a JSON body into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &core.InputError{Field: "body", Msg: err.Error()}
	}
	return nil
}

// readUpload returns the name and contents of the multipart "file" field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	limit := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, fmt.Errorf("parse upload: %w", err)
		}
		return "", nil, &core.InputError{Field: "file", Msg: "malformed multipart form: " + err.Error()}
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, &core.InputError{Field: "file", Msg: "no file provided"}
	}
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	if header.Size > limit {
		return "", nil, fmt.Errorf("file too large: %w", &http.MaxBytesError{Limit: limit})
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

// parseMapping reads the optional "mapping" form field: a JSON object from
// CSV header to field key.
func parseMapping(r *http.Request) (map[string]core.FieldKey, error) {
	raw := strings.TrimSpace(r.FormValue("mapping"))
	if raw == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, &core.InputError{Field: "mapping", Msg: "invalid mapping: " + err.Error()}
	}
	out := make(map[string]core.FieldKey, len(m))
	for header, key := range m {
		k, err := core.ParseFieldKey(key)
		if err != nil {
			return nil, &core.InputError{Field: "mapping", Msg: err.Error()}
		}
		out[header] = k
	}
	return out, nil
}

// parseEntryFilter reads q, start, end, vehicle and period from the query.
// start and end are dates; end covers the whole day.
func parseEntryFilter(r *http.Request) (core.EntryFilter, string, error) {
	q := r.URL.Query()
	f := core.EntryFilter{
		Search:    q.Get("q"),
		VehicleID: q.Get("vehicle"),
	}
	if v := q.Get("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, "", &core.InputError{Field: "start", Msg: "must be YYYY-MM-DD"}
		}
		f.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, "", &core.InputError{Field: "end", Msg: "must be YYYY-MM-DD"}
		}
		f.End = t.Add(24*time.Hour - time.Nanosecond)
	}

	period := q.Get("period")
	switch period {
	case "", "month", "year":
	default:
		return f, "", &core.InputError{Field: "period", Msg: "must be month or year"}
	}
	return f, period, nil
}

// selectEntries applies the period and filter, oldest first.
func selectEntries(entries []core.FuelEntry, f core.EntryFilter, period string, now time.Time) []core.FuelEntry {
	switch period {
	case "month":
		entries = core.CurrentMonth(entries, now)
	case "year":
		entries = core.CurrentYear(entries, now)
	}
	return core.SortByDate(core.FilterEntries(entries, f))
}

// parseIntParam parses an integer query parameter, falling back to def.
func parseIntParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
