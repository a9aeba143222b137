// api.go - HTTP handler functions for the bina endpoints.
//
// This file contains the route setup and the handlers. Installer requests
// always answer with a shell script: resolution failures are rendered as an
// error script so that piping the response into sh stays safe.
package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/egoist/bina/internal/script"
)

const scriptContentType = "text/plain; charset=utf-8"

// SetupRoutes defines the public endpoints.
func SetupRoutes(router *mux.Router, installerService *InstallerService, cfg *Config, logger *zap.SugaredLogger) {
	router.Use(RequestIDMiddleware)
	router.Use(AccessLogMiddleware(logger))

	router.HandleFunc("/healthz", handleHealth()).Methods("GET")
	router.HandleFunc("/{owner}/{repo:.+}", handleInstallerScript(installerService, cfg, logger)).Methods("GET", "HEAD")
	// Router.Use does not apply to NotFoundHandler.
	router.NotFoundHandler = RequestIDMiddleware(AccessLogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})))
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: ServerVersion})
	}
}

func handleInstallerScript(installerService *InstallerService, cfg *Config, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		req, err := newInstallRequest(r, vars["owner"]+"/"+vars["repo"], cfg)
		if err != nil {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}

		body, err := installerService.BuildScript(r.Context(), req)
		if err != nil {
			logger.Errorw("Failed to build installer script",
				"request_id", req.RequestID,
				"repo", req.Ref.String(),
				"error", err,
			)
			body = script.RenderError(err.Error())
		}
		respondScript(w, r, body)
	}
}

// --- Helper functions ---

func respondScript(w http.ResponseWriter, r *http.Request, body string) {
	w.Header().Set("Content-Type", scriptContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(body))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		response, _ := json.Marshal(payload)
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
