package server

import "net/http"

// NewMux registers every route on a fresh mux.
func NewMux(h *Handler, cors bool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/source", h.HandleList)
	mux.HandleFunc("GET /api/source/{identifier}", h.HandleSource)
	mux.HandleFunc("GET /api/descriptor/{identifier}", h.HandleDescriptor)
	mux.HandleFunc("GET /sandbox/{identifier}", h.HandleSandbox)
	mux.HandleFunc("GET /playground", h.HandlePlayground)
	mux.HandleFunc("GET /healthz", h.HandleHealth)

	if cors {
		return CORS(mux)
	}
	return mux
}
