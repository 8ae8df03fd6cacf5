// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	positionengine "github.com/adeoluwa/flocktrack/internal/app/engine/positions"
	reportengine "github.com/adeoluwa/flocktrack/internal/app/engine/reports"
	areasfeature "github.com/adeoluwa/flocktrack/internal/app/features/areas"
	centresfeature "github.com/adeoluwa/flocktrack/internal/app/features/centres"
	districtsfeature "github.com/adeoluwa/flocktrack/internal/app/features/districts"
	healthfeature "github.com/adeoluwa/flocktrack/internal/app/features/health"
	loginfeature "github.com/adeoluwa/flocktrack/internal/app/features/login"
	logoutfeature "github.com/adeoluwa/flocktrack/internal/app/features/logout"
	messagesfeature "github.com/adeoluwa/flocktrack/internal/app/features/messages"
	notificationsfeature "github.com/adeoluwa/flocktrack/internal/app/features/notifications"
	positionsfeature "github.com/adeoluwa/flocktrack/internal/app/features/positions"
	reportsfeature "github.com/adeoluwa/flocktrack/internal/app/features/reports"
	userinfofeature "github.com/adeoluwa/flocktrack/internal/app/features/userinfo"
	usersfeature "github.com/adeoluwa/flocktrack/internal/app/features/users"
	zonesfeature "github.com/adeoluwa/flocktrack/internal/app/features/zones"
	"github.com/adeoluwa/flocktrack/internal/app/notify"
	areastore "github.com/adeoluwa/flocktrack/internal/app/store/areas"
	centrestore "github.com/adeoluwa/flocktrack/internal/app/store/centres"
	districtstore "github.com/adeoluwa/flocktrack/internal/app/store/districts"
	notificationstore "github.com/adeoluwa/flocktrack/internal/app/store/notifications"
	positionchangestore "github.com/adeoluwa/flocktrack/internal/app/store/positionchanges"
	reportstore "github.com/adeoluwa/flocktrack/internal/app/store/reports"
	userstore "github.com/adeoluwa/flocktrack/internal/app/store/users"
	zonestore "github.com/adeoluwa/flocktrack/internal/app/store/zones"
	"github.com/adeoluwa/flocktrack/internal/app/system/auth"
	"github.com/adeoluwa/flocktrack/internal/app/system/hierarchy"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. It wires the stores into the
// hierarchy directory, the notifier, and the report and position
// engines, then mounts a feature router per URL prefix.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Session manager with secure cookies in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on each request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Stores.
	users := userstore.New(db)
	districts := districtstore.New(db)
	areas := areastore.New(db)
	zones := zonestore.New(db)
	centres := centrestore.New(db)
	reports := reportstore.New(db)
	positions := positionchangestore.New(db)
	notifications := notificationstore.New(db)

	// Chain resolution and the notification side-channel.
	directory := hierarchy.New(centres, areas, districts, zones)
	notifier := notify.New(users, zones, notifications, logger)

	// Engines.
	reportEng := reportengine.New(reports, directory, notifier, logger)
	positionEng := positionengine.New(positions, users, centres, areas, zones, districts, notifier, logger)

	hash := func(plain string) (string, error) {
		b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		return string(b), err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication.
	loginHandler := loginfeature.NewHandler(db, sessionMgr, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	userinfoHandler := userinfofeature.NewHandler(logger)
	r.Mount("/userinfo", userinfofeature.Routes(userinfoHandler, sessionMgr))

	// Hierarchy administration.
	districtsHandler := districtsfeature.NewHandler(db, logger)
	r.Mount("/districts", districtsfeature.Routes(districtsHandler, sessionMgr))

	areasHandler := areasfeature.NewHandler(db, logger)
	r.Mount("/areas", areasfeature.Routes(areasHandler, sessionMgr))

	zonesHandler := zonesfeature.NewHandler(db, logger)
	r.Mount("/zones", zonesfeature.Routes(zonesHandler, sessionMgr))

	centresHandler := centresfeature.NewHandler(db, logger)
	r.Mount("/centres", centresfeature.Routes(centresHandler, sessionMgr))

	usersHandler := usersfeature.NewHandler(db, hash, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	// Weekly reports and the approval chain.
	reportsHandler := reportsfeature.NewHandler(reportEng, zones, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

	// Position changes.
	positionsHandler := positionsfeature.NewHandler(positionEng, zones, logger)
	r.Mount("/positions", positionsfeature.Routes(positionsHandler, sessionMgr))

	// Notifications and direct messages.
	notificationsHandler := notificationsfeature.NewHandler(db, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	messagesHandler := messagesfeature.NewHandler(db, zones, notifier, logger)
	r.Mount("/messages", messagesfeature.Routes(messagesHandler, sessionMgr))

	return r, nil
}
