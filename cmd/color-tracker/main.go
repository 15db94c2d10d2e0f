package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/color-tracker/internal/config"
	"github.com/ironsheep/color-tracker/internal/monitoring"
	"github.com/ironsheep/color-tracker/internal/report"
	"github.com/ironsheep/color-tracker/internal/server"
	"github.com/ironsheep/color-tracker/internal/source"
	"github.com/ironsheep/color-tracker/internal/store"
	"github.com/ironsheep/color-tracker/internal/timeutil"
	"github.com/ironsheep/color-tracker/internal/tracking"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("color-tracker - follow a colored object with a camera")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  color-tracker run [options]     Track from a camera or a frame directory")
	fmt.Println("  color-tracker plot [options]    Plot a recorded session")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'color-tracker <command> -h' for command options.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Enable debug logging (also read from .env)\n", monitoring.LogLevelEnv)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("color-tracker %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage()
		return
	}

	// Configure logging to stderr (stdout is for the diagnostics protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// A .env file in the working directory may set the log level.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	if monitoring.DebugEnabled() {
		log.Printf("Color tracker v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runTracker(os.Args[2:])
	case "plot":
		err = runPlot(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runTracker(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "JSON configuration file (defaults apply when empty)")
	frames := fs.String("frames", "", "replay image files from this directory instead of a camera")
	loop := fs.Bool("loop", false, "restart the frame directory after the last frame")
	dbPath := fs.String("db", "", "record gate commits to this SQLite database")
	serve := fs.Bool("serve", false, "serve MCP diagnostics on stdin/stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	var src tracking.FrameSource
	if *frames != "" {
		replay, err := source.NewReplay(*frames, cfg.CameraFPS)
		if err != nil {
			return err
		}
		replay.Loop = *loop
		log.Printf("Replaying %d frames from %s", replay.Len(), *frames)
		src = replay
	} else {
		src = source.NewCamera(source.CameraOptions{
			Device: cfg.CameraDevice,
			Width:  cfg.CameraWidth,
			Height: cfg.CameraHeight,
			FPS:    cfg.CameraFPS,
		})
	}

	var opts []tracking.Option
	var db *store.Store
	if *dbPath != "" {
		var err error
		db, err = store.Open(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, tracking.WithRecorder(db))
	}

	body := tracking.NewBody(r3.Vec{Y: cfg.SurfaceY})
	tr, err := tracking.New(src, body, cfg.Tracking(), opts...)
	if err != nil {
		return err
	}
	log.Printf("Tracking %s, session %s", cfg.TrackingColor, tr.SessionID())

	if *serve {
		var commits server.CommitLog
		if db != nil {
			commits = db
		}
		srv := server.New(tr, cfg, commits)
		srv.Version = Version
		go func() {
			if err := srv.Run(os.Stdin, os.Stdout); err != nil {
				log.Printf("Diagnostics server error: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tracking.Run(ctx, timeutil.RealClock{}, tr); err != nil {
		return err
	}

	s := tr.Status()
	log.Printf("Stopped after %d ticks: %d scans, %d commits, %d dropped frames",
		s.Ticks, s.Scans, s.Commits, s.Dropped)
	return nil
}

func runPlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database written by 'run --db'")
	session := fs.String("session", "", "session to plot (defaults to the most recent)")
	out := fs.String("out", "trajectory.png", "trajectory chart path")
	areaOut := fs.String("area-out", "", "optional area-over-time chart path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return errors.New("--db is required")
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	id := *session
	if id == "" {
		sessions, err := db.Sessions(ctx)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return report.ErrNoCommits
		}
		id = sessions[0]
	}

	commits, err := db.Commits(ctx, id)
	if err != nil {
		return err
	}
	if err := report.PlotTrajectory(commits, *out); err != nil {
		return err
	}
	log.Printf("Wrote %d commits of session %s to %s", len(commits), id, *out)

	if *areaOut != "" {
		if err := report.PlotArea(commits, *areaOut); err != nil {
			return err
		}
		log.Printf("Wrote area chart to %s", *areaOut)
	}
	return nil
}
