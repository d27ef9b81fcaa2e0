//go:build js && wasm

package main

import (
	"context"
	"net/http"
	"os"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/controller"
	"finitefield.org/movie-dashboard/internal/dashboard/dom/jsdom"
	"finitefield.org/movie-dashboard/internal/dashboard/logging"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
)

func main() {
	logger := logging.NewWriter(os.Stdout, "info").Named("dashboard")

	page := jsdom.New()
	svc, err := recs.NewHTTPService(jsdom.Origin(), http.DefaultClient,
		recs.WithCSRF(recs.DefaultCSRFHeader, jsdom.CookieToken{Name: "csrftoken"}))
	if err != nil {
		logger.Error("build service", zap.Error(err))
		return
	}

	ctrl, err := controller.New(controller.Options{
		Page:       page,
		Service:    svc,
		Logger:     logger,
		ThemeStore: jsdom.LocalStorage{},
		Preference: jsdom.NewMediaPreference(page),
		Presenter:  jsdom.BootstrapPresenter{},
		Opener:     jsdom.WindowOpener{},
		Prompter:   jsdom.WindowPrompt{},
	})
	if err != nil {
		logger.Error("build controller", zap.Error(err))
		return
	}
	if err := ctrl.Start(context.Background()); err != nil {
		logger.Error("start controller", zap.Error(err))
		return
	}

	// Listener callbacks need the runtime alive for the lifetime of the page.
	select {}
}
