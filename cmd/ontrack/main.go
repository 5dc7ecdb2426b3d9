package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mklatt/ontrack/internal/assess"
	"github.com/mklatt/ontrack/internal/config"
	"github.com/mklatt/ontrack/internal/demo"
	"github.com/mklatt/ontrack/internal/goalstore"
	"github.com/mklatt/ontrack/internal/monitor"
	"github.com/mklatt/ontrack/internal/ui"
	"github.com/mklatt/ontrack/internal/ws"
)

const usage = `usage: ontrack <command> [flags]

commands:
  watch    monitor the current session and show a live assessment
  goal     set or show the goal for a session
  status   report whether a monitor is running and what goal is set

run "ontrack <command> -h" for command flags.`

func main() {
	log.SetFlags(log.Ltime)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "watch":
		err = cmdWatch(os.Args[2:])
	case "goal":
		err = cmdGoal(os.Args[2:])
	case "status":
		err = cmdStatus(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("ontrack: %v", err)
	}
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "path to config file")
	transcript := fs.String("transcript", "", "transcript file to watch (default: newest for current directory)")
	goalFlag := fs.String("goal", "", "session goal (overrides stored and auto-captured goals)")
	serveAddr := fs.String("serve", "", "also serve the web dashboard on this address, e.g. localhost:8410")
	demoMode := fs.Bool("demo", false, "watch a synthetic session instead of a real transcript")
	quiet := fs.Bool("quiet", false, "suppress the terminal panel (useful with -serve)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %v", err)
	}
	if *serveAddr != "" {
		cfg.Server.Addr = *serveAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := *transcript
	if *demoMode {
		path = filepath.Join(os.TempDir(), "ontrack-demo.jsonl")
		_ = os.Remove(path)
		gen := demo.NewGenerator(path, 0)
		go func() {
			if err := gen.Run(ctx.Done()); err != nil {
				log.Printf("[demo] generator stopped: %v", err)
			}
		}()
		log.Printf("[watch] demo transcript: %s", path)
	} else if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		path, err = monitor.FindTranscript(cwd)
		if err != nil {
			return fmt.Errorf("no transcript found for %s: %v (use -transcript)", cwd, err)
		}
	}

	sessionID := monitor.SessionIDFromPath(path)
	slug := projectSlugFor(path, *demoMode)

	goals := goalstore.New(cfg.StateDir)

	var assessor assess.Assessor
	if cfg.Assessor.BaseURL != "" && cfg.Assessor.APIKey != "" {
		assessor = assess.NewClient(assess.ClientOptions{
			BaseURL: cfg.Assessor.BaseURL,
			Model:   cfg.Assessor.Model,
			APIKey:  cfg.Assessor.APIKey,
			Timeout: cfg.Assessor.Timeout,
		})
		log.Printf("[watch] assessor: %s (%s)", cfg.Assessor.BaseURL, cfg.Assessor.Model)
	} else {
		log.Printf("[watch] no assessor configured, using built-in heuristics")
	}
	sched := assess.NewScheduler(assessor, cfg.Monitor.AssessEvery)

	mon := monitor.New(cfg, path, sessionID, slug, sched, goals)
	if *goalFlag != "" {
		mon.SetGoal(*goalFlag)
		if err := goals.Write(sessionID, *goalFlag); err != nil {
			log.Printf("[watch] goal store write failed: %v", err)
		}
	}

	if !*quiet {
		renderer := ui.NewRenderer(os.Stdout)
		mon.AddPresenter(renderer.Render)
	}

	if cfg.Server.Addr != "" {
		broadcaster := ws.NewBroadcaster(0)
		mon.AddPresenter(broadcaster.Publish)

		server := ws.NewServer(broadcaster)
		mux := http.NewServeMux()
		server.SetupRoutes(mux)
		go func() {
			log.Printf("[watch] dashboard on http://%s", cfg.Server.Addr)
			if err := ws.ListenAndServe(cfg.Server.Addr, mux); err != nil {
				log.Printf("[watch] server error: %v", err)
				cancel()
			}
		}()
	}

	if err := goals.WritePID(sessionID, os.Getpid()); err != nil {
		log.Printf("[watch] pid write failed: %v", err)
	}
	defer goals.ClearPID(sessionID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("[watch] shutting down")
		cancel()
	}()

	log.Printf("[watch] session %s (%s)", sessionID, path)
	mon.Run(ctx)
	return nil
}

func cmdGoal(args []string) error {
	fs := flag.NewFlagSet("goal", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "path to config file")
	session := fs.String("session", "", "session id (default: newest session for current directory)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %v", err)
	}
	sessionID, err := resolveSession(*session)
	if err != nil {
		return err
	}

	goals := goalstore.New(cfg.StateDir)
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		stored, err := goals.Read(sessionID)
		if err != nil {
			return err
		}
		if stored == "" {
			fmt.Printf("no goal set for session %s\n", sessionID)
		} else {
			fmt.Printf("%s\n", stored)
		}
		return nil
	}

	if err := goals.Write(sessionID, text); err != nil {
		return err
	}
	fmt.Printf("goal set for session %s\n", sessionID)
	return nil
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "path to config file")
	session := fs.String("session", "", "session id (default: newest session for current directory)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %v", err)
	}
	sessionID, err := resolveSession(*session)
	if err != nil {
		return err
	}

	goals := goalstore.New(cfg.StateDir)
	if pid, alive := goals.MonitorPID(sessionID); alive {
		fmt.Printf("monitor running (pid %d) for session %s\n", pid, sessionID)
	} else {
		fmt.Printf("no monitor running for session %s\n", sessionID)
	}

	stored, err := goals.Read(sessionID)
	if err != nil {
		return err
	}
	if stored == "" {
		fmt.Println("goal: (none)")
	} else {
		fmt.Printf("goal: %s\n", stored)
	}
	return nil
}

func resolveSession(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, err := monitor.FindTranscript(cwd)
	if err != nil {
		return "", fmt.Errorf("no session found for %s: %v (use -session)", cwd, err)
	}
	return monitor.SessionIDFromPath(path), nil
}

func projectSlugFor(transcript string, demoMode bool) string {
	if demoMode {
		return "demo"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Base(filepath.Dir(transcript))
	}
	return monitor.ProjectSlug(cwd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ontrack", "config.yaml")
}
