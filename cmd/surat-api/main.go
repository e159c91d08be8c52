package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/suratflow/internal/handlers"
	"github.com/Lllllllleong/suratflow/internal/logging"
)

var (
	api     http.Handler
	once    sync.Once
	initErr error
)

func init() {
	logging.Init()

	// "SuratAPI" is the entry point name configured in GCP.
	functions.HTTP("SuratAPI", serveAPI)
}

// main is required by the Go Functions Framework.
func main() {}

func serveAPI(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		api, _, initErr = handlers.NewAPIFromEnv(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: API initialization failed", logging.ErrKey, initErr, logging.PriorityCritical())
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	api.ServeHTTP(w, r)
}
