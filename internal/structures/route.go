package structures

import "net/http"

type Route struct {
	Method  string
	Url     string
	Handler http.Handler
}

// Pattern is the http.ServeMux pattern for the route, e.g. "GET /sessions".
func (r Route) Pattern() string {
	return r.Method + " " + r.Url
}
