package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/portfolio/internal/codestore"
	"github.com/xxxsen/portfolio/internal/config"
	"github.com/xxxsen/portfolio/internal/db"
	"github.com/xxxsen/portfolio/internal/handler"
	"github.com/xxxsen/portfolio/internal/job"
	"github.com/xxxsen/portfolio/internal/middleware"
	"github.com/xxxsen/portfolio/internal/oauth"
	"github.com/xxxsen/portfolio/internal/pkg/jwt"
	"github.com/xxxsen/portfolio/internal/pkg/password"
	"github.com/xxxsen/portfolio/internal/repo"
	"github.com/xxxsen/portfolio/internal/schedule"
	"github.com/xxxsen/portfolio/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "portfolio backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run portfolio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			logutil.GetLogger(context.Background()).Info("migrations applied")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (environment variables override it)")
	rootCmd.AddCommand(runCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func bootstrap(configPath string) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn.DB, cfg.Database.Driver); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func runServer(cfg *config.Config, conn *sqlx.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("code_store", cfg.VerificationCode.Store),
	)

	hasher := password.NewHasher(cfg.Password.BcryptCost)
	userRepo := repo.NewUserRepo(conn, hasher)
	codeRepo := repo.NewVerificationCodeRepo(conn)
	codeTTL := time.Duration(cfg.VerificationCode.TTLMinutes) * time.Minute
	codes, err := codestore.New(cfg.VerificationCode.Store, cfg.VerificationCode.CacheSize, 2*codeTTL, codeRepo)
	if err != nil {
		return fmt.Errorf("init code store: %w", err)
	}
	signer, err := jwt.NewSigner([]byte(cfg.JWTSecret), nil)
	if err != nil {
		return fmt.Errorf("init token signer: %w", err)
	}

	oauthProviders := map[string]oauth.Provider{}
	if cfg.OAuth.Google.Enabled() {
		google := cfg.OAuth.Google
		oauthProviders["google"] = oauth.NewGoogle(oauth.Config{
			ClientID:     google.ClientID,
			ClientSecret: google.ClientSecret,
			RedirectURL:  google.RedirectURL,
			Scopes:       google.Scopes,
			AuthURL:      google.AuthURL,
			TokenURL:     google.TokenURL,
			UserInfoURL:  google.UserInfoURL,
		}, &http.Client{Timeout: 10 * time.Second})
	} else {
		logutil.GetLogger(context.Background()).Warn("google oauth disabled: client id or secret missing")
	}

	mailSender := service.NewEmailSender(cfg.Mail)
	authService := service.NewAuthService(userRepo, hasher, signer, mailSender, nil)
	defer authService.Wait()
	oauthService := service.NewOAuthService(userRepo, signer, oauthProviders, *cfg.OAuth.LinkVerifiedEmail, nil)
	resetService := service.NewPasswordResetService(userRepo, codes, mailSender, codeTTL, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.VerificationCode.Store == "db" && cfg.VerificationCode.CleanupCron != "" {
		scheduler := schedule.NewCronScheduler(ctx)
		if err := scheduler.AddJob(job.NewVerificationCodeCleanupJob(codeRepo, codeTTL, nil), cfg.VerificationCode.CleanupCron); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	deps := handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authService),
		OAuth:          handler.NewOAuthHandler(oauthService, cfg.FrontendURL),
		Password:       handler.NewPasswordHandler(resetService),
		Tokens:         signer,
		ResetRateLimit: time.Duration(cfg.ResetRateLimitSeconds) * time.Second,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
