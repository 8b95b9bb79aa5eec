package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ironsheep/vision-vote/internal/config"
	"github.com/ironsheep/vision-vote/internal/httpapi"
	"github.com/ironsheep/vision-vote/internal/imaging"
	"github.com/ironsheep/vision-vote/internal/pipeline"
	"github.com/ironsheep/vision-vote/internal/server"
	"github.com/ironsheep/vision-vote/internal/session"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// sweepInterval is how often expired vote sessions are removed.
const sweepInterval = time.Minute

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("vision-vote %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	flags := pflag.NewFlagSet("vision-vote", pflag.ExitOnError)
	serveHTTP := flags.Bool("http", false, "serve the HTTP API instead of MCP over stdio")
	addr := flags.String("addr", "", "HTTP listen address (default from config, \":8080\")")
	configPath := flags.String("config", "", "YAML configuration file")
	flags.Parse(os.Args[1:])

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("VISION_VOTE_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Vision Vote v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if *addr != "" {
		cfg.Address = *addr
	}

	cache := imaging.NewImageCache()

	svc := pipeline.FromConfig(cfg, cache)
	svc.Debug = debug

	sessions := session.NewManager(cfg.SessionTTL, cfg.SessionDebounce)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, sessions, debug)

	if *serveHTTP {
		err = runHTTP(ctx, cfg, svc, sessions, cache)
	} else {
		err = server.New(svc, sessions).Run(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server error: %v", err)
	}
}

func runHTTP(ctx context.Context, cfg *config.Config, svc *pipeline.Service, sessions *session.Manager, cache *imaging.ImageCache) error {
	handler := httpapi.New(svc, sessions, cache, cfg.TempDir)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown error: %v", err)
		}
	}()

	log.Printf("HTTP API listening on %s", cfg.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func sweepSessions(ctx context.Context, sessions *session.Manager, debug bool) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 && debug {
				log.Printf("Swept %d expired vote sessions", n)
			}
		}
	}
}

func printHelp() {
	fmt.Println("vision-vote - number tag recognition with multi-round voting")
	fmt.Println()
	fmt.Println("Usage: vision-vote [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println("  --http           Serve the HTTP API instead of MCP over stdio")
	fmt.Println("  --addr ADDR      HTTP listen address (default :8080)")
	fmt.Println("  --config FILE    YAML configuration file")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  VISION_VOTE_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  VISION_VOTE_CONFIG             Configuration file path")
	fmt.Println("  VISION_VOTE_ADDR               HTTP listen address")
	fmt.Println("  VISION_VOTE_TEMP_DIR           Directory for staged uploads")
	fmt.Println("  VISION_VOTE_RECOGNIZER         Default recognizer (tesseract, easyocr)")
	fmt.Println("  VISION_VOTE_DETECTOR           Default detector (contour, yolo)")
	fmt.Println("  VISION_VOTE_RECOGNIZER_SCRIPT  External recognition script")
	fmt.Println("  VISION_VOTE_DETECTOR_SCRIPT    External detection script")
	fmt.Println("  VISION_VOTE_TIMEOUT            Timeout for one external script run")
	fmt.Println("  VISION_VOTE_SESSION_TTL        Idle time before a vote session expires")
	fmt.Println("  VISION_VOTE_SESSION_DEBOUNCE   Minimum gap between repeat confirmations")
	fmt.Println("  VISION_VOTE_USE_GPU            Let external scripts use the GPU")
	fmt.Println("  PYTHON_PATH                    Interpreter for external scripts")
	fmt.Println()
	fmt.Println("Without --http the server communicates via MCP protocol over stdin/stdout.")
}
