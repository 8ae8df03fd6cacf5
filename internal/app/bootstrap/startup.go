// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/adeoluwa/flocktrack/internal/app/store/users"
	"github.com/adeoluwa/flocktrack/internal/app/system/status"
	"github.com/adeoluwa/flocktrack/internal/app/system/timeouts"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// FlockTrack uses it to guarantee an admin account exists so a fresh
// deployment can be administered at all.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}
	return ensureAdmin(ctx, deps, appCfg, logger)
}

func ensureAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	opCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	users := userstore.New(deps.MongoDatabase)
	if _, err := users.GetByEmail(opCtx, appCfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u, err := users.Create(opCtx, models.User{
		FullName:     appCfg.AdminName,
		Email:        appCfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Status:       status.Active,
	})
	if err != nil {
		// A concurrent replica may have created it between the lookup
		// and the insert.
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil
		}
		return err
	}
	logger.Info("bootstrap admin created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", appCfg.AdminEmail))
	return nil
}
