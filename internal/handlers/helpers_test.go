package handlers

import (
	"net/http"

	"github.com/dimitrije/taskflow-api/internal/middleware"
	"github.com/dimitrije/taskflow-api/internal/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"go.uber.org/zap"
)

const testEmail = "test@example.com"

var testLogger = zap.NewNop()

// protectedApp mounts a single route behind the body parser and the auth middleware.
func protectedApp(method, path string, handler func(*drift.Context)) http.Handler {
	return newTestApp(true, method, path, handler)
}

// publicApp mounts a single route behind the body parser only.
func publicApp(method, path string, handler func(*drift.Context)) http.Handler {
	return newTestApp(false, method, path, handler)
}

func newTestApp(withAuth bool, method, path string, handler func(*drift.Context)) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	if withAuth {
		app.Use(middleware.Auth(testutil.TestJWTService()))
	}
	switch method {
	case http.MethodGet:
		app.Get(path, handler)
	case http.MethodPost:
		app.Post(path, handler)
	case http.MethodPatch:
		app.Patch(path, handler)
	case http.MethodDelete:
		app.Delete(path, handler)
	}
	return app
}
