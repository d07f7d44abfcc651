package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/breathscope/identity-api/docs"
	"github.com/breathscope/identity-api/internal/api/handler"
	"github.com/breathscope/identity-api/internal/api/middleware"
	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
	"github.com/breathscope/identity-api/internal/core/service"
	mongodb "github.com/breathscope/identity-api/internal/infrastructure/db/mongo"
	redisdb "github.com/breathscope/identity-api/internal/infrastructure/db/redis"
	"github.com/breathscope/identity-api/internal/infrastructure/oauth"
	"github.com/breathscope/identity-api/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, mail ports.MailDispatcher, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	otpRegistry := redisdb.NewOTPRegistry(rdb)
	tokens := service.NewTokenService(cfg.JWTSecret)

	registration := service.NewRegistrationService(userRepo, tokens, mail, cfg.Tokens.VerificationTTL, cfg.Tokens.VerifyLinkBase)
	auth := service.NewAuthService(userRepo, tokens, cfg.Tokens.SessionTTL)
	recovery := service.NewRecoveryService(userRepo, otpRegistry, tokens, mail, cfg.Tokens.OTPTTL, cfg.Tokens.ResetTTL)
	oauthLink := service.NewOAuthService(userRepo, tokens, cfg.Tokens.OAuthSessionTTL)
	profile := service.NewProfileService(userRepo)

	google := oauth.NewGoogleProvider(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.GoogleCallbackURL)

	authHandler := handler.NewAuthHandler(registration, auth)
	recoveryHandler := handler.NewRecoveryHandler(recovery)
	oauthHandler := handler.NewOAuthHandler(google, oauthLink, cfg.OAuth.SuccessRedirect, cfg.OAuth.FailureRedirect, log)
	profileHandler := handler.NewProfileHandler(profile)

	authRequired := middleware.Auth(tokens)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Identity routes ---
	e.POST("/signup", authHandler.Signup)
	e.GET("/verify/:token", authHandler.Verify)
	e.POST("/login", authHandler.Login)

	// --- Password recovery ---
	e.POST("/forgot-password", recoveryHandler.ForgotPassword)
	e.POST("/verify-otp", recoveryHandler.VerifyOTP)
	e.POST("/reset-password", recoveryHandler.ResetPassword)

	// --- OAuth linkage ---
	e.GET("/auth/google", oauthHandler.Login)
	e.GET("/auth/google/callback", oauthHandler.Callback)

	// --- Authenticated profile routes ---
	e.GET("/me", profileHandler.Me, authRequired)
	e.PUT("/users", profileHandler.UpdateProfile, authRequired)
	e.PUT("/change-password", profileHandler.ChangePassword, authRequired)
	e.DELETE("/delete-account", profileHandler.DeleteAccount, authRequired)

	// --- Admin routes ---
	e.GET("/users", profileHandler.ListUsers, authRequired, adminOnly)
	e.GET("/user-signups-over-time", profileHandler.SignupsOverTime, authRequired, adminOnly)

	// --- Health probes & ops (no auth required) ---
	healthHandler := handler.NewHealthHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
