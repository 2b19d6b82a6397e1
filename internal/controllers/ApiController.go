package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"

	"livenotes/internal/models"
	"livenotes/internal/providers"
	"livenotes/internal/services"
	"livenotes/internal/transcript"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger   providers.Logger
	rooms    *services.RoomRegistry
	options  *services.OptionsService
	exporter *transcript.Exporter
	cache    providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, rooms *services.RoomRegistry, options *services.OptionsService, exporter *transcript.Exporter, cache providers.CacheProviderInterface) *ApiController {
	ac := &ApiController{
		logger:   logger,
		rooms:    rooms,
		options:  options,
		exporter: exporter,
		cache:    cache,
	}
	rooms.OnChange(func(string) { cache.Clear() })
	return ac
}

// pointRequest carries the annotation together with the metadata the
// identity resolver would otherwise look up. When Live is set the live
// status decides the start time; otherwise Start is used as is.
type pointRequest struct {
	Text  string `json:"text"`
	Start int64  `json:"start"`
	Live  *bool  `json:"live"`
	Name  string `json:"name" validate:"required"`
	Link  string `json:"link"`
	Title string `json:"title" validate:"required"`
}

type sessionView struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Start  int64  `json:"start"`
	Points int    `json:"points"`
	Label  string `json:"label"`
}

type broadcasterView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Link     string        `json:"link"`
	Sessions []sessionView `json:"sessions"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) fail(w http.ResponseWriter, r *http.Request, err error) {
	logType := providers.GetLogTypeByRequestType(r.Method)
	var parseErr *models.ParseError
	switch {
	case errors.Is(err, services.ErrInvalidRoom):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		ac.logger.Warnf(logType, "%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Gateway Timeout", http.StatusGatewayTimeout)
	case errors.As(err, &parseErr):
		ac.logger.Errorf(logType, "%s %s: corrupt %s blob: %v", r.Method, r.URL.Path, parseErr.Kind, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		ac.logger.Errorf(logType, "%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) room(r *http.Request) (*services.RoomService, error) {
	return ac.rooms.Room(r.Context(), r.URL.Query().Get("room"))
}

// RecordPoint handles "annotation submitted".
func (ac *ApiController) RecordPoint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload pointRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if v := validate.Struct(&payload); !v.Validate() {
		http.Error(w, v.Errors.One(), http.StatusBadRequest)
		return
	}

	rs, err := ac.room(r)
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	resolver := services.StaticResolver{
		Identity: models.Identity{Name: payload.Name, Link: payload.Link, Title: payload.Title},
	}
	var recorded bool
	if payload.Live != nil {
		resolver.Status = models.LiveStatus{IsLive: *payload.Live, StartEpochSeconds: payload.Start}
		recorded, err = rs.Annotate(r.Context(), resolver, payload.Text)
	} else {
		recorded, err = rs.RecordPoint(r.Context(), resolver, payload.Start, payload.Text)
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if recorded {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"recorded": recorded})
}

// listingCacheKey is taken before the listing is computed. A listing that
// races a mutation is stored under the superseded revision and never served.
func listingCacheKey(rs *services.RoomService) string {
	return fmt.Sprintf("sessions:%s:%d", rs.RoomID(), rs.Revision())
}

// ListSessions returns the visible broadcasters with their sessions, newest
// session first.
func (ac *ApiController) ListSessions(w http.ResponseWriter, r *http.Request) {
	rs, err := ac.room(r)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.serveFromCacheOrCompute(w, r, listingCacheKey(rs), func() (any, error) {
		views := make([]broadcasterView, 0)
		for ab := range rs.ListActive(r.Context()) {
			bv := broadcasterView{
				ID:       ab.Broadcaster.ID,
				Name:     ab.Broadcaster.Name,
				Link:     ab.Broadcaster.Link,
				Sessions: make([]sessionView, 0, len(ab.Sessions)),
			}
			for _, as := range models.SortSessionsByStartDesc(ab.Sessions) {
				bv.Sessions = append(bv.Sessions, sessionView{
					ID:     as.Session.ID,
					Title:  as.Session.Title,
					Start:  as.Session.StartTime,
					Points: len(as.Session.Points),
					Label:  ac.exporter.ListLabel(*as.Session),
				})
			}
			views = append(views, bv)
		}
		return views, r.Context().Err()
	})
}

// Export handles "export requested".
func (ac *ApiController) Export(w http.ResponseWriter, r *http.Request) {
	rs, err := ac.room(r)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	session, name, err := rs.Session(r.URL.Query().Get("session"))
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	body := ac.exporter.Render(session, name, ac.options.Get())
	fileName := ac.exporter.FileName(session, name)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(fileName)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// DeleteSession handles "delete requested".
func (ac *ApiController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	rs, err := ac.room(r)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	outcome, err := rs.DeleteSessionByID(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": outcome.String()})
}

// Clear handles "clear requested".
func (ac *ApiController) Clear(w http.ResponseWriter, r *http.Request) {
	rs, err := ac.room(r)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	if err := rs.Clear(r.Context()); err != nil {
		ac.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Compact handles "panel closed".
func (ac *ApiController) Compact(w http.ResponseWriter, r *http.Request) {
	rs, err := ac.room(r)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	stats, err := rs.Compact(r.Context())
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (ac *ApiController) GetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.options.Get())
}

func (ac *ApiController) SetOptions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var opts models.ExportOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := ac.options.Set(r.Context(), opts); err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}
