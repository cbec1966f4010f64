package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit"
	auditrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate"
	certrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience"
	exprepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/profile"
	profilerepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/profile/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project"
	projectrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section"
	sectionrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session"
	sessionrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/site"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/skill"
	skillrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/skill/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/upload"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

const sessionPruneInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("migrate", true, "apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	sugar := e.sugar
	sugar.Info("starting portfolio")

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := database.Migrate(ctx, e.db.DB); err != nil {
			return err
		}
	}

	// cache: local go-cache, fanned out over NOTIFY and the optional webhook
	cacheCfg := cache.ConfigFromEnv()
	store := cache.New(cacheCfg, sugar)
	store.AddBroadcaster(cache.NewPGNotifier(e.db))
	if cacheCfg.RevalidationURL != "" {
		store.AddBroadcaster(cache.NewRevalidator(cacheCfg.RevalidationURL, cacheCfg.RevalidationSecret, sugar))
	}
	go func() {
		if err := cache.NewListener(e.dbCfg.ConnString(), store, sugar).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			sugar.Warnw("cache listener stopped", "err", err)
		}
	}()

	sessions, err := session.NewService(sessionrepo.NewSessionRepo(e.db), session.ConfigFromEnv())
	if err != nil {
		return err
	}
	users := user.NewUserService(userrepo.NewUserRepo(e.db), nil, sugar)
	users.Sessions = sessions
	if _, err := users.EnsureAdmin(ctx, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"), os.Getenv("ADMIN_NAME")); err != nil {
		return err
	}

	auditSvc := audit.NewService(auditrepo.NewAuditRepo(e.db))
	kit := mutation.NewKit(auditSvc, store, sugar)

	projects := project.NewService(projectrepo.NewProjectRepo(e.db), kit, store)
	experiences := experience.NewService(exprepo.NewExperienceRepo(e.db), kit, store)
	certificates := certificate.NewService(certrepo.NewCertificateRepo(e.db), kit, store)
	skills := skill.NewService(skillrepo.NewSkillRepo(e.db), kit, store)
	profiles := profile.NewService(profilerepo.NewProfileRepo(e.db), kit, store)
	sections := section.NewService(sectionrepo.NewRepo(e.db), kit, store)
	if _, err := sections.Seed(ctx, section.DefaultSections()); err != nil {
		return err
	}

	uploadCfg := upload.ConfigFromEnv()
	var objects upload.ObjectStore
	if uploadCfg.Enabled() {
		s3, err := upload.NewS3Store(ctx, uploadCfg)
		if err != nil {
			return err
		}
		objects = s3
	} else {
		sugar.Warn("S3_BUCKET not set; uploads are disabled")
	}

	pages := site.NewService(site.Sources{
		Profile:      profiles,
		Sections:     sections,
		Projects:     projects,
		Experiences:  experiences,
		Certificates: certificates,
		Skills:       skills,
	}, store)

	// mount http server
	httpCfg := router.ConfigFromEnv()
	handler := router.RegisterRoutes(sugar, httpCfg, router.Handlers{
		Auth:         user.NewHandler(users, sessions, sugar),
		Projects:     project.NewHandler(projects, sugar),
		Experiences:  experience.NewHandler(experiences, sugar),
		Certificates: certificate.NewHandler(certificates, sugar),
		Skills:       skill.NewHandler(skills, sugar),
		Profile:      profile.NewHandler(profiles, sugar),
		Sections:     section.NewHandler(sections, sugar),
		Audit:        audit.NewHandler(auditSvc, sugar),
		Upload:       upload.NewHandler(upload.NewService(objects, uploadCfg, kit), sugar),
		Site:         site.NewHandler(pages, sugar),
		Authenticate: sessions.Authenticate(sugar),
		Require:      session.Require,
		DB:           e.db,
	})
	srv := &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go pruneSessions(ctx, sessions, sugar)

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", httpCfg.Addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
	return nil
}

type pruner interface {
	Prune(ctx context.Context) (int64, error)
}

func pruneSessions(ctx context.Context, p pruner, sugar *zap.SugaredLogger) {
	t := time.NewTicker(sessionPruneInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.Prune(ctx)
			if err != nil {
				sugar.Warnw("prune sessions failed", "err", err)
				continue
			}
			if n > 0 {
				sugar.Infow("expired sessions pruned", "count", n)
			}
		}
	}
}
