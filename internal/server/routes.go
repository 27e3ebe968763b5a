package server

import "net/http"

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.app.QueueHandler.HealthHandler)
	mux.HandleFunc("/api/status", s.app.QueueHandler.StatusHandler)
	mux.HandleFunc("/api/queue/trigger", s.app.QueueHandler.TriggerHandler)
	mux.HandleFunc("/api/jobs", s.app.QueueHandler.JobsHandler)

	return mux
}
