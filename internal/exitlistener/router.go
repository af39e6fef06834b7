package exitlistener

import (
	"net/http"

	"github.com/gorilla/mux"
	"tools.zach/dev/exitd/internal/paths"
)

// ///////////////////////////////////////////////
// Route Table
// ///////////////////////////////////////////////

// route binds one (method, path) pair to its handler.
type route struct {
	method  string
	path    string
	handler http.HandlerFunc
}

// routes returns the full command surface of the listener.
func (s *Server) routes() []route {
	return []route{
		{method: http.MethodPost, path: paths.ExitRoute, handler: s.handleExit},
	}
}

// newRouter registers table on a router that matches paths verbatim: no
// cleaning of "//exit", no redirect of "/exit/". Unmatched paths get 404 and
// a known path with the wrong method gets 405, both with empty bodies.
func newRouter(table []route) *mux.Router {
	r := mux.NewRouter().SkipClean(true)
	for _, rt := range table {
		r.HandleFunc(rt.path, rt.handler).Methods(rt.method)
	}
	r.NotFoundHandler = statusOnly(http.StatusNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", allowedMethods(table, req.URL.Path))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	return r
}

// allowedMethods lists the methods registered for path, comma separated.
func allowedMethods(table []route, path string) string {
	var allow string
	for _, rt := range table {
		if rt.path != path {
			continue
		}
		if allow != "" {
			allow += ", "
		}
		allow += rt.method
	}
	return allow
}

// statusOnly answers every request with code and no body.
func statusOnly(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	})
}
