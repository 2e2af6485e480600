package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/getstubd/stubd/internal/cliconfig"
	"github.com/getstubd/stubd/pkg/admin"
	"github.com/getstubd/stubd/pkg/cli/internal/output"
	"github.com/getstubd/stubd/pkg/config"
	"github.com/getstubd/stubd/pkg/engine"
	"github.com/getstubd/stubd/pkg/logging"
	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/store/file"
	"github.com/getstubd/stubd/pkg/store/memory"
	"github.com/getstubd/stubd/pkg/store/redis"
	"github.com/getstubd/stubd/pkg/stub"
)

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

// serveCmd represents the serve command, the foreground server entrypoint.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stub server (foreground)",
	Long: `Start the stub server. A single listener serves stub traffic and the
management API; the latter is mounted under the admin prefix.

Configuration is resolved from flags, then STUBD_* environment variables,
then defaults. A .env file in the working directory is loaded first when
present. The admin password and signing secret are only read from the
environment (STUBD_ADMIN_PASSWORD, STUBD_AUTH_SECRET); when unset, a
random password is generated and printed once at startup.`,
	Example: `  # Start with defaults (file-backed storage on port 4780)
  stubd serve

  # Seed from a collection on a custom port
  stubd serve --config seed.yaml --port 3000

  # Seed every collection under a directory
  stubd serve --seed-dir ./stubs

  # Keep everything in memory
  stubd serve --backend memory

  # Store in Redis
  stubd serve --backend redis --redis-addr localhost:6379`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServeWithFlags(cmd, &serveFlagVals)
	},
}

// serveFlags holds the serve command's flag values.
type serveFlags struct {
	// Server flags
	port        int
	adminPrefix string
	username    string
	noAuth      bool

	// Seed flags
	configFile string
	seedDir    string

	// Storage flags
	backend   string
	dataDir   string
	redisAddr string
	redisDB   int

	// HTTP flags
	readTimeout   int
	writeTimeout  int
	maxLogEntries int
	corsOrigins   string

	// Logging flags
	logLevel  string
	logFormat string
}

func initServeCmd() {
	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals
	defaults := cliconfig.NewDefault()

	serveCmd.Flags().IntVarP(&f.port, "port", "p", defaults.Port, "Listener port (0 = ephemeral)")
	serveCmd.Flags().StringVar(&f.adminPrefix, "admin-prefix", defaults.AdminPrefix, "Path prefix the management API is mounted under")
	serveCmd.Flags().StringVar(&f.username, "admin-username", defaults.AdminUsername, "Management API login name")
	serveCmd.Flags().BoolVar(&f.noAuth, "no-auth", false, "Disable management API authentication (stored in settings)")

	serveCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Seed collection file (YAML or JSON)")
	serveCmd.Flags().StringVar(&f.seedDir, "seed-dir", "", "Directory of seed collections, scanned recursively")

	serveCmd.Flags().StringVar(&f.backend, "backend", defaults.Backend, "Storage backend (memory, file, redis)")
	serveCmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Data directory for file-backed storage")
	serveCmd.Flags().StringVar(&f.redisAddr, "redis-addr", "", "Redis address for the redis backend (host:port)")
	serveCmd.Flags().IntVar(&f.redisDB, "redis-db", 0, "Redis logical database for the redis backend")

	serveCmd.Flags().IntVar(&f.readTimeout, "read-timeout", defaults.ReadTimeout, "HTTP read timeout in seconds")
	serveCmd.Flags().IntVar(&f.writeTimeout, "write-timeout", defaults.WriteTimeout, "HTTP write timeout in seconds")
	serveCmd.Flags().IntVar(&f.maxLogEntries, "max-log-entries", defaults.MaxLogEntries, "Maximum request history entries")
	serveCmd.Flags().StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated CORS origins for the management API")

	serveCmd.Flags().StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
}

func init() {
	initServeCmd()
}

// serveContext holds the runtime state of a serve invocation.
type serveContext struct {
	flags  *serveFlags
	cfg    *config.ServerConfiguration
	store  store.Store
	server *engine.Server
	api    *admin.API
	log    *slog.Logger

	// generatedPassword is set when no admin password was configured and
	// one was generated at startup, so it can be printed once.
	generatedPassword string
}

// runServeWithFlags is the core serve logic called by the cobra command.
func runServeWithFlags(cmd *cobra.Command, flags *serveFlags) error {
	// A local .env participates in configuration resolution
	_ = godotenv.Load()

	if err := validateServeFlags(flags); err != nil {
		return err
	}

	serverCfg := buildServerConfiguration(cmd, flags)
	if err := serverCfg.Validate(); err != nil {
		return err
	}

	sctx := &serveContext{flags: flags, cfg: serverCfg}
	sctx.log = logging.New(logging.Config{
		Level:  logging.ParseLevel(serverCfg.LogLevel),
		Format: logging.ParseFormat(serverCfg.LogFormat),
	})

	if err := bootstrapCredentials(sctx); err != nil {
		return err
	}

	ctx := context.Background()
	st, err := openStore(serverCfg.Store)
	if err != nil {
		return err
	}
	if err := st.Open(ctx); err != nil {
		return fmt.Errorf("open %s store: %w", serverCfg.Store.Backend, err)
	}
	sctx.store = st

	if flags.noAuth {
		disabled := false
		if _, err := st.Settings().Update(ctx, &stub.SettingsPatch{AuthEnabled: &disabled}); err != nil {
			_ = st.Close()
			return fmt.Errorf("disable authentication: %w", err)
		}
		sctx.log.Warn("management API authentication disabled")
	}

	seeded, err := serverCfg.Seed(ctx, st)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("seed store: %w", err)
	}
	if seeded != nil {
		sctx.log.Info("seed applied",
			"projects_created", seeded.ProjectsCreated,
			"projects_updated", seeded.ProjectsUpdated,
			"endpoints", seeded.EndpointsCreated)
	}

	sctx.server = engine.NewServer(serverCfg,
		engine.WithStore(st),
		engine.WithLogger(sctx.log),
	)

	sctx.api = admin.NewAPI(serverCfg, st,
		admin.WithStats(sctx.server),
		admin.WithRequestLog(sctx.server.RequestLog()),
	)
	sctx.api.SetLogger(sctx.log)
	sctx.server.SetAdminHandler(sctx.api.Handler())

	if err := sctx.server.Start(); err != nil {
		_ = st.Close()
		return err
	}

	printServeStartupMessage(sctx, seeded)
	return runMainLoop(sctx)
}

// validateServeFlags rejects flag combinations before anything starts.
func validateServeFlags(f *serveFlags) error {
	if f.port < 0 || f.port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 0 and 65535", f.port)
	}
	if f.backend != "" && !store.Backend(f.backend).Valid() {
		return fmt.Errorf("unknown storage backend %q (expected memory, file, or redis)", f.backend)
	}
	if f.configFile != "" && f.seedDir != "" {
		return errors.New("cannot use --config and --seed-dir together")
	}
	return nil
}

// buildServerConfiguration resolves the effective configuration with
// flags > environment > defaults precedence.
func buildServerConfiguration(cmd *cobra.Command, f *serveFlags) *config.ServerConfiguration {
	cfg := cliconfig.NewDefault()
	cliconfig.LoadEnvConfig(cfg)

	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
			cfg.Sources[name] = cliconfig.SourceFlag
		}
	}
	set("port", func() { cfg.Port = f.port })
	set("admin-prefix", func() { cfg.AdminPrefix = f.adminPrefix })
	set("admin-username", func() { cfg.AdminUsername = f.username })
	set("backend", func() { cfg.Backend = f.backend })
	set("data-dir", func() { cfg.DataDir = f.dataDir })
	set("redis-addr", func() { cfg.RedisAddr = f.redisAddr })
	set("redis-db", func() { cfg.RedisDB = f.redisDB })
	set("read-timeout", func() { cfg.ReadTimeout = f.readTimeout })
	set("write-timeout", func() { cfg.WriteTimeout = f.writeTimeout })
	set("max-log-entries", func() { cfg.MaxLogEntries = f.maxLogEntries })
	set("log-level", func() { cfg.LogLevel = f.logLevel })
	set("log-format", func() { cfg.LogFormat = f.logFormat })
	cfg.SeedFile = f.configFile
	cfg.SeedDir = f.seedDir

	serverCfg := cfg.ServerConfig()
	if f.corsOrigins != "" {
		origins := strings.Split(f.corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		serverCfg.CORS.AllowOrigins = origins
	}
	return serverCfg
}

// bootstrapCredentials fills in the admin password and signing secret
// when the environment provides neither.
func bootstrapCredentials(sctx *serveContext) error {
	cfg := sctx.cfg
	if cfg.AdminPassword == "" {
		password, err := randomSecret(16)
		if err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		cfg.AdminPassword = password
		sctx.generatedPassword = password
	}
	if cfg.AuthSecret == "" {
		secret, err := randomSecret(32)
		if err != nil {
			return fmt.Errorf("generate auth secret: %w", err)
		}
		cfg.AuthSecret = secret
		sctx.log.Warn("no auth secret configured, sessions will not survive a restart",
			"env", cliconfig.EnvAuthSecret)
	}
	return nil
}

// randomSecret returns n random bytes hex-encoded.
func randomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// openStore constructs the configured storage backend.
func openStore(cfg store.Config) (store.Store, error) {
	switch cfg.Backend {
	case store.BackendMemory:
		return memory.New(), nil
	case store.BackendFile:
		return file.New(cfg), nil
	case store.BackendRedis:
		return redis.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// printServeStartupMessage prints where the server is listening and how
// to get started when the store is empty.
func printServeStartupMessage(sctx *serveContext, seeded *config.SeedResult) {
	port := sctx.server.Port()

	fmt.Printf("stubd server started (%s backend)\n", sctx.cfg.Store.Backend)
	fmt.Println()
	fmt.Printf("  Stub server: http://localhost:%d\n", port)
	fmt.Printf("  Admin API:   http://localhost:%d%s\n", port, sctx.cfg.AdminPrefix)
	fmt.Println()

	if sctx.generatedPassword != "" {
		fmt.Printf("Generated admin password: %s\n", sctx.generatedPassword)
		fmt.Printf("Log in with: stubd login --username %s\n", sctx.cfg.AdminUsername)
		fmt.Println()
	}

	switch {
	case seeded != nil:
		parts := []string{}
		if n := seeded.ProjectsCreated + seeded.ProjectsUpdated; n > 0 {
			parts = append(parts, fmt.Sprintf("%d projects", n))
		}
		if seeded.EndpointsCreated > 0 {
			parts = append(parts, fmt.Sprintf("%d endpoints", seeded.EndpointsCreated))
		}
		if len(parts) > 0 {
			fmt.Printf("Seeded %s\n", strings.Join(parts, ", "))
			fmt.Println()
		}
	case storeIsEmpty(sctx.store):
		fmt.Println("No projects configured. Quick start:")
		fmt.Println()
		fmt.Println("  stubd login")
		fmt.Println("  stubd project add --name demo --base-path /api")
		fmt.Println("  stubd endpoint add --project <id> --path /users --status 200 --body '[]'")
		fmt.Printf("  curl http://localhost:%d/api/users\n", port)
		fmt.Println()
	}

	fmt.Println("Press Ctrl+C to stop")
}

// storeIsEmpty reports whether no projects exist yet. Errors read as
// non-empty so the quick start hint never masks a real problem.
func storeIsEmpty(st store.Store) bool {
	projects, err := st.Projects().List(context.Background())
	return err == nil && len(projects) == 0
}

// runMainLoop blocks until a shutdown signal arrives, then stops the
// server and closes the store.
func runMainLoop(sctx *serveContext) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\nShutting down...")

	if err := sctx.server.Stop(); err != nil {
		output.Warn("server shutdown error: %v", err)
	}
	if err := sctx.store.Close(); err != nil {
		output.Warn("store close error: %v", err)
	}
	sctx.log.Info("server stopped")
	return nil
}
