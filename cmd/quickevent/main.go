package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/engine"
	"github.com/tartampluch/go-quickevent/internal/locale"
	"github.com/tartampluch/go-quickevent/internal/nlp"
	"github.com/tartampluch/go-quickevent/internal/publish"
	"github.com/tartampluch/go-quickevent/internal/server"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

// main is the application entry point.
// It delegates execution to runMain so that deferred calls (like closing the
// log file) run before the process terminates.
func main() {
	os.Exit(runMain(os.Args, os.Stdout))
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain(args []string, stdout io.Writer) int {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var logCloser io.Closer
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()

	app := &cli.App{
		Name:        config.AppName,
		Usage:       config.UsageApp,
		Version:     config.Version,
		HideVersion: true,
		Writer:      stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: config.FlagConfig, Usage: config.FlagDescConfig},
			&cli.BoolFlag{Name: config.FlagDebug, Usage: config.FlagDescDebug},
		},
		Before: func(c *cli.Context) error {
			logCloser = setupLogging(c.Bool(config.FlagDebug))
			return nil
		},
		Commands: []*cli.Command{
			parseCommand(stdout),
			serveCommand(),
			versionCommand(stdout),
		},
	}

	if err := app.RunContext(ctx, args); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

func parseCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      config.CmdParse,
		Usage:     config.UsageParse,
		ArgsUsage: config.ArgsParse,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: config.FlagTree, Usage: config.FlagDescTree},
			&cli.BoolFlag{Name: config.FlagICS, Usage: config.FlagDescICS},
			&cli.BoolFlag{Name: config.FlagPublish, Usage: config.FlagDescPublish},
		},
		Action: func(c *cli.Context) error {
			input := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if input == "" {
				return errors.New(config.ErrMissingArgument)
			}

			settings, err := loadSettings(c)
			if err != nil {
				return err
			}

			var ev *engine.Event
			if c.Bool(config.FlagTree) {
				ev, err = resolveTree(input)
			} else {
				ev, err = resolveMessage(c.Context, settings, input)
			}
			if err != nil {
				return err
			}

			contacts, err := loadDirectory(c.Context, settings)
			if err != nil {
				return err
			}

			if c.Bool(config.FlagPublish) {
				p, err := publish.NewPublisher(c.Context, settings.CalDAV, contacts)
				if err != nil {
					return err
				}
				if _, err := p.Publish(c.Context, ev); err != nil {
					return err
				}
			}

			if c.Bool(config.FlagICS) {
				data, err := engine.RenderCalendar([]*engine.Event{ev}, contacts, time.Now())
				if err != nil {
					return err
				}
				_, err = stdout.Write(data)
				return err
			}

			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ev)
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  config.CmdServe,
		Usage: config.UsageServe,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: config.FlagPort, Usage: config.FlagDescPort},
		},
		Action: func(c *cli.Context) error {
			settings, err := loadSettings(c)
			if err != nil {
				return err
			}
			if port := c.String(config.FlagPort); port != "" {
				settings.Server.Port = port
			}
			logStartupInfo()

			pipeline, err := nlp.NewPipeline(settings.NLP.GrammarFile)
			if err != nil {
				return err
			}
			contacts, err := loadDirectory(c.Context, settings)
			if err != nil {
				return err
			}

			srv := server.NewCalendarServer(settings.Server.Port, &engine.Resolver{
				Clock:    engine.RealClock{},
				Producer: pipeline,
			})
			srv.BindAddr = settings.Server.BindAddr
			srv.Catalog = locale.NewCatalog(settings.Language)
			srv.Contacts = contacts

			if settings.PublishingEnabled() {
				p, err := publish.NewPublisher(c.Context, settings.CalDAV, contacts)
				if err != nil {
					return err
				}
				srv.Publisher = p
			}

			if err := srv.Start(c.Context); err != nil {
				return err
			}
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return nil
		},
	}
}

func versionCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  config.CmdVersion,
		Usage: config.UsageVersion,
		Action: func(c *cli.Context) error {
			printVersion(stdout)
			return nil
		},
	}
}

func loadSettings(c *cli.Context) (*config.Settings, error) {
	settings, err := config.Load(c.String(config.FlagConfig))
	if err != nil {
		return nil, err
	}
	settings.LoadSecrets(config.KeyringGetter)
	return settings, nil
}

func resolveMessage(ctx context.Context, settings *config.Settings, message string) (*engine.Event, error) {
	pipeline, err := nlp.NewPipeline(settings.NLP.GrammarFile)
	if err != nil {
		return nil, err
	}
	r := &engine.Resolver{Clock: engine.RealClock{}, Producer: pipeline}
	return r.Resolve(ctx, message)
}

func resolveTree(text string) (*engine.Event, error) {
	root, err := tree.Parse(text)
	if err != nil {
		return nil, err
	}
	r := &engine.Resolver{Clock: engine.RealClock{}}
	ev, err := r.ResolveTree(root)
	if err != nil {
		return nil, err
	}
	ev.Message = tree.Words(root)
	return ev, nil
}

// loadDirectory returns the configured address book, or nil when none is set.
func loadDirectory(ctx context.Context, settings *config.Settings) (engine.Contacts, error) {
	if settings.Directory.Mode == config.SourceModeNone {
		return nil, nil
	}
	loader := &engine.DirectoryLoader{Fetcher: engine.NewHTTPFetcher()}
	dir, err := loader.Load(ctx, engine.DirectorySource{
		Mode:      settings.Directory.Mode,
		LocalPath: settings.Directory.LocalPath,
		URL:       settings.Directory.URL,
		User:      settings.Directory.User,
		Password:  settings.Directory.Password,
	})
	if err != nil {
		return nil, err
	}
	return dir, nil
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger. Logs go to stderr, so that
// stdout only carries command output, and to a file in the user cache dir.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stderr}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}
