package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"fitgap-client/internal/account"
	"fitgap-client/internal/analyses"
	googleauth "fitgap-client/internal/auth"
	"fitgap-client/internal/gateway"
	"fitgap-client/internal/mypage"
	"fitgap-client/internal/postings"
	"fitgap-client/internal/report"
	"fitgap-client/internal/resumes"
	"fitgap-client/internal/session"
	"fitgap-client/internal/shared/config"
	"fitgap-client/internal/shared/metrics"
	"fitgap-client/internal/shared/storage/db"
	"fitgap-client/internal/shared/storage/object"
	localstore "fitgap-client/internal/shared/storage/object/local"
	s3store "fitgap-client/internal/shared/storage/object/s3"
	"fitgap-client/internal/shared/telemetry"
	"fitgap-client/internal/tokenstore"
)

// App holds the shared client stack. Views are built per command from it.
type App struct {
	Config   config.Config
	DB       *sql.DB
	Tokens   *tokenstore.Store
	Gateway  *gateway.Client
	Session  *session.Manager
	Nav      *Navigator
	Google   *googleauth.GoogleLogin
	MyPage   *mypage.Client
	Resumes  *resumes.Client
	Postings *postings.Client
	Analyses *analyses.Client

	exportOnce sync.Once
	exporter   *report.Exporter
	exportErr  error
}

// Build prepares the stack. Network services are not contacted except for
// the Postgres token tier when it is selected.
func Build(ctx context.Context, cfg config.Config, out io.Writer) (*App, error) {
	telemetry.Configure(cfg.LogLevel, cfg.LogFormat)

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	durable, err := buildDurableTier(cfg, sqlDB)
	if err != nil {
		return nil, err
	}
	tokens := tokenstore.New(durable, buildEphemeralTier(cfg))

	gw := gateway.New(gateway.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Tokens:    tokens,
	})
	nav := NewNavigator(out)
	mgr := session.NewManager(tokens, gw, nav)
	gw.OnUnauthorized(mgr.Revoke)

	redirect := cfg.GoogleRedirect
	if strings.TrimSpace(redirect) == "" {
		redirect = "http://" + cfg.CallbackAddr + "/login/callback"
	}

	return &App{
		Config:   cfg,
		DB:       sqlDB,
		Tokens:   tokens,
		Gateway:  gw,
		Session:  mgr,
		Nav:      nav,
		Google:   googleauth.NewGoogleLogin(cfg.GoogleClientID, redirect),
		MyPage:   mypage.NewClient(gw),
		Resumes:  &resumes.Client{API: gw},
		Postings: &postings.Client{API: gw},
		Analyses: analyses.NewClient(gw),
	}, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DurableStore != "postgres" {
		return nil, nil
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("FITGAP_DURABLE_STORE=postgres requires DATABASE_URL")
	}
	opts := db.OptionsFromEnv(db.DefaultClientOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate token store: %w", err)
	}
	return sqlDB, nil
}

func buildDurableTier(cfg config.Config, sqlDB *sql.DB) (tokenstore.Tier, error) {
	switch cfg.DurableStore {
	case "postgres":
		return &tokenstore.PGTier{DB: sqlDB, Profile: cfg.Profile}, nil
	case "memory":
		return tokenstore.NewMemoryTier(), nil
	default:
		if strings.ContainsAny(cfg.Profile, `/\`) || cfg.Profile == ".." {
			return nil, fmt.Errorf("invalid profile name %q", cfg.Profile)
		}
		return tokenstore.NewFileTier(filepath.Join(cfg.StateDir, cfg.Profile, "tokens.json")), nil
	}
}

func buildEphemeralTier(cfg config.Config) tokenstore.Tier {
	if cfg.EphemeralStore == "memory" {
		return tokenstore.NewMemoryTier()
	}
	return tokenstore.NewFileTier(filepath.Join(cfg.RuntimeDir, "session-"+cfg.SessionID+".json"))
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ExportStore {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.ExportDir), nil
	}
}

// Exporter builds the report exporter on first use so commands that never
// export do not load AWS configuration.
func (a *App) Exporter(ctx context.Context) (*report.Exporter, error) {
	a.exportOnce.Do(func() {
		store, err := buildStore(ctx, a.Config)
		if err != nil {
			a.exportErr = err
			return
		}
		a.exporter = report.NewExporter(store)
	})
	return a.exporter, a.exportErr
}

// MyPagePage mounts the account overview.
func (a *App) MyPagePage() *mypage.Page {
	return mypage.NewPage(a.Session, a.MyPage, a.Analyses)
}

// ResumePage mounts the jobseeker résumé view.
func (a *App) ResumePage() *resumes.Page {
	return resumes.NewPage(resumes.Deps{
		Guard:    a.Session,
		MyPage:   a.MyPage,
		Resumes:  a.Resumes,
		Analyses: a.Analyses,
		Handles:  a.Tokens,
		Nav:      a.Nav,
	})
}

// PostingPage mounts the company posting view.
func (a *App) PostingPage() *postings.Page {
	return postings.NewPage(postings.Deps{
		Guard:    a.Session,
		MyPage:   a.MyPage,
		Postings: a.Postings,
		Analyses: a.Analyses,
		Handle:   a.Tokens,
		Nav:      a.Nav,
	})
}

func (a *App) AnalysisPage() *analyses.DetailPage {
	return analyses.NewDetailPage(a.Session, a.Analyses)
}

func (a *App) AccountService() *account.Service {
	return account.NewService(a.Gateway, a.Session)
}

// Close flushes metrics and logs and releases the database.
func (a *App) Close() {
	if a.Config.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
			telemetry.Warn("metrics.write_failed", map[string]any{"path": a.Config.MetricsFile, "error": err})
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	telemetry.Sync()
}
