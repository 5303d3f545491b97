// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/crewdeck/crewdeck/internal/app/features/health"
	projectsfeature "github.com/crewdeck/crewdeck/internal/app/features/projects"
	tasksfeature "github.com/crewdeck/crewdeck/internal/app/features/tasks"
	teamfeature "github.com/crewdeck/crewdeck/internal/app/features/team"
	userinfofeature "github.com/crewdeck/crewdeck/internal/app/features/userinfo"
	userstore "github.com/crewdeck/crewdeck/internal/app/store/users"
	"github.com/crewdeck/crewdeck/internal/app/system/auth"
	"github.com/crewdeck/crewdeck/internal/app/system/httperr"
	"github.com/crewdeck/crewdeck/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. CrewDeck applies session middleware,
// then mounts the JSON feature routers: health, userinfo, projects, tasks,
// and team.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data
	// on each request: profile edits and dropped accounts take effect
	// immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.CrewDeckMongoDatabase))

	// Error logger shared by all feature handlers.
	errLog := httperr.NewLogger(logger)

	r := chi.NewRouter()

	// Tag every request with an id, then load the SessionUser into
	// context for handlers to read via auth.CurrentUser(r).
	r.Use(requestid.Middleware)
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.CrewDeckMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Session introspection for the frontend
	userinfoHandler := userinfofeature.NewHandler()
	userinfofeature.MountRoutes(r, userinfoHandler)

	db := deps.CrewDeckMongoDatabase

	projectsHandler := projectsfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/projects", projectsfeature.Routes(projectsHandler, sessionMgr))

	tasksHandler := tasksfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/tasks", tasksfeature.Routes(tasksHandler, sessionMgr))

	teamHandler := teamfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/team", teamfeature.Routes(teamHandler, sessionMgr))

	return r, nil
}
