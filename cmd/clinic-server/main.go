package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/documents"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo patients, physicians, and appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, _ := cmd.Flags().GetInt("patients")
			physicians, _ := cmd.Flags().GetInt("physicians")

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			var pool *pgxpool.Pool
			if cfg.StorageBackend == "postgres" {
				pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
				if err != nil {
					return err
				}
				defer pool.Close()
			}

			repos, err := buildRepositories(cfg, pool)
			if err != nil {
				return err
			}

			return runSeed(ctx, logger, repos, patients, physicians)
		},
	}
	cmd.Flags().Int("patients", 25, "Number of fake patients to create")
	cmd.Flags().Int("physicians", 5, "Number of fake physicians to create")
	return cmd
}

// runSeed populates the backing store with fake identities and a demo
// appointment per patient on the next weekday mornings.
func runSeed(ctx context.Context, logger zerolog.Logger, repos repositories, nPatients, nPhysicians int) error {
	specialties := []string{"Family Medicine", "Internal Medicine", "Pediatrics", "Cardiology", "Dermatology"}

	physicianIDs := make([]uuid.UUID, 0, nPhysicians)

	for i := 0; i < nPhysicians; i++ {
		p := &identity.Physician{
			FirstName:     gofakeit.FirstName(),
			LastName:      gofakeit.LastName(),
			Specialty:     specialties[i%len(specialties)],
			NPINumber:     strptr(gofakeit.DigitN(10)),
			LicenseNumber: strptr(fmt.Sprintf("MD-%s", gofakeit.DigitN(6))),
			Phone:         strptr(gofakeit.Phone()),
			Email:         strptr(gofakeit.Email()),
			Active:        true,
		}
		if err := repos.physicians.Create(ctx, p); err != nil {
			return fmt.Errorf("seeding physician: %w", err)
		}
		physicianIDs = append(physicianIDs, p.ID)
	}
	logger.Info().Int("count", nPhysicians).Msg("seeded physicians")

	// Demo appointments start on the next weekday at 09:00 local time.
	day := nextWeekday(time.Now())
	slot := 0

	for i := 0; i < nPatients; i++ {
		pat := &identity.Patient{
			MRN:       fmt.Sprintf("MRN-%06d", i+1),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Phone:     strptr(gofakeit.Phone()),
			Email:     strptr(gofakeit.Email()),
			City:      strptr(gofakeit.City()),
			State:     strptr(gofakeit.StateAbr()),
			Active:    true,
		}
		if err := repos.patients.Create(ctx, pat); err != nil {
			return fmt.Errorf("seeding patient: %w", err)
		}

		physID := physicianIDs[i%len(physicianIDs)]
		start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local).
			Add(time.Duration(slot) * 30 * time.Minute)
		if start.Hour() >= 16 {
			day = nextWeekday(day.AddDate(0, 0, 1))
			slot = 0
			start = time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local)
		}
		slot++

		appt, err := scheduling.NewAppointment(pat.ID, physID, start, start.Add(30*time.Minute),
			"office-visit", gofakeit.Sentence(4))
		if err != nil {
			return fmt.Errorf("seeding appointment: %w", err)
		}
		if err := repos.appointments.Add(ctx, appt); err != nil {
			return fmt.Errorf("seeding appointment: %w", err)
		}
	}
	logger.Info().Int("count", nPatients).Msg("seeded patients with demo appointments")
	return nil
}

func nextWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func strptr(s string) *string { return &s }

// repositories groups one concrete backend per repository interface.
type repositories struct {
	appointments scheduling.AppointmentRepository
	blocks       scheduling.UnavailableBlockRepository
	patients     identity.PatientRepository
	physicians   identity.PhysicianRepository
	documents    documents.Repository
}

// buildRepositories selects the persistence backend from config. The remote
// backend only serves appointments; the remaining repositories fall back to
// memory there.
func buildRepositories(cfg *config.Config, pool *pgxpool.Pool) (repositories, error) {
	switch cfg.StorageBackend {
	case "memory":
		return repositories{
			appointments: scheduling.NewAppointmentRepoMem(),
			blocks:       scheduling.NewBlockRepoMem(),
			patients:     identity.NewPatientRepoMem(),
			physicians:   identity.NewPhysicianRepoMem(),
			documents:    documents.NewRepoMem(),
		}, nil
	case "remote":
		return repositories{
			appointments: scheduling.NewAppointmentRepoHTTP(cfg.RemoteAPIURL),
			blocks:       scheduling.NewBlockRepoMem(),
			patients:     identity.NewPatientRepoMem(),
			physicians:   identity.NewPhysicianRepoMem(),
			documents:    documents.NewRepoMem(),
		}, nil
	case "postgres":
		if pool == nil {
			return repositories{}, fmt.Errorf("postgres backend requires a database connection")
		}
		return repositories{
			appointments: scheduling.NewAppointmentRepoPG(pool),
			blocks:       scheduling.NewBlockRepoPG(pool),
			patients:     identity.NewPatientRepo(pool),
			physicians:   identity.NewPhysicianRepo(pool),
			documents:    documents.NewRepo(pool),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// newRouter assembles the echo instance with the full middleware chain and
// all domain routes registered.
func newRouter(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, repos repositories) (*echo.Echo, *scheduling.Service) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M", "8M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.ResolvedAuthMode() == "development" {
		e.Use(auth.DevAuthMiddleware(auth.AuthSkipper))
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
			Skipper:  auth.AuthSkipper,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	manager := scheduling.NewScheduleManager(scheduling.FirstAvailableStrategy{})
	schedSvc := scheduling.NewService(manager, repos.appointments, repos.blocks)
	if pool != nil {
		schedSvc.UseTx(func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.InTx(ctx, pool, fn)
		})
	}
	schedHandler := scheduling.NewHandler(schedSvc)
	schedHandler.RegisterRoutes(apiV1)

	identitySvc := identity.NewService(repos.patients, repos.physicians)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(apiV1)

	docSvc := documents.NewService(repos.documents)
	docHandler := documents.NewHandler(docSvc)
	docHandler.RegisterRoutes(apiV1)

	return e, schedSvc
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.StorageBackend == "postgres" {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
	}

	repos, err := buildRepositories(cfg, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build repositories")
	}

	e, schedSvc := newRouter(cfg, logger, pool, repos)

	// Rehydrate in-memory schedules from the persisted appointment set, then
	// block out weekends and after-hours for the scheduling horizon.
	appts, blocks, err := schedSvc.LoadSchedules(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load schedules")
	}
	schedSvc.Manager().SeedFacilityClosures(time.Now(), 90)
	logger.Info().
		Int("appointments", appts).
		Int("unavailable_blocks", blocks).
		Str("backend", cfg.StorageBackend).
		Msg("schedules loaded")

	// Start server in a goroutine so shutdown signals can be handled.
	go func() {
		addr := ":" + cfg.Port
		var err error
		if cfg.TLSEnabled {
			logger.Info().Str("addr", addr).Msg("starting server with TLS")
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			logger.Info().Str("addr", addr).Msg("starting server")
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
