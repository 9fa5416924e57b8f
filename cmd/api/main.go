package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smsvault/internal/common"
	"smsvault/internal/wire"

	"github.com/gorilla/mux"
)

func main() {
	app, cleanup, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.Config.Server.Host, app.Config.Server.Port),
		Handler:        setupRouter(app),
		ReadTimeout:    time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		app.Logger.Infof("Server starting on %s (%s)", server.Addr, app.Config.Server.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Infof("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// stop taking requests first, then drain pending emails and close the store
	if err := server.Shutdown(ctx); err != nil {
		app.Logger.Errorf("Server forced to shutdown: %v", err)
	}
	cleanup()

	app.Logger.Infof("Server gracefully stopped")
}

// mux runs Use middleware only on matched routes, so the chain wraps the
// router itself and preflights reach CORSMiddleware.
func setupRouter(app *wire.Application) http.Handler {
	router := mux.NewRouter()
	app.Handler.RegisterRoutes(router)

	var handler http.Handler = router
	handler = common.AuthMiddleware(app.Config.Security.AuthKey, app.Logger)(handler)
	handler = common.LoggingMiddleware(app.Logger)(handler)
	handler = common.CORSMiddleware(handler)
	handler = common.RequestIDMiddleware(handler)
	return handler
}
