// Command portal is a terminal client for the MED Portal lesson repository:
// it discovers lessons on GitHub, renders them, runs quizzes and
// flashcards, and chats with the lesson-scoped AI tutor.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/ai"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/content"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/markdown"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/platform/cache"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/platform/config"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/platform/database"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/platform/settings"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/store"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/tutor"
)

const usage = `usage: portal <command> [args]

commands:
  lessons                          list every lesson in the content repo
  browse [year [branch]]           list children of a content path
  lesson <year> <branch> <lesson>  render a lesson to HTML on stdout
  quiz   <year> <branch> <lesson>  take the lesson quiz interactively
  cards  <year> <branch> <lesson>  study the lesson flashcards
  tutor  <year> <branch> <lesson>  chat with the AI tutor about the lesson
  theme  [light|dark]              show or set the display theme
  key    <api-key>                 save the Gemini API key
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, cleanup, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.run(ctx, args[0], args[1:]); err != nil {
		slog.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// app wires the content repository, renderer, settings, and tutor together
// for the command handlers.
type app struct {
	cfg      *config.Config
	repo     *content.Repository
	renderer *markdown.Renderer
	settings *settings.Settings
	pool     *database.DB // nil unless persistent tutor history is configured
}

func newApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	sets, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	client := store.NewClient(cfg.Content.Repo,
		store.WithRef(cfg.Content.Ref),
		store.WithAPIBase(cfg.Content.APIBase),
		store.WithRawBase(cfg.Content.RawBase),
	)

	var repoOpts []content.Option
	cleanup := func() {}

	if cfg.Cache.URL != "" {
		shared, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			// The shared cache is an accelerator, never a requirement.
			slog.Warn("shared cache unavailable, continuing without it", "error", err)
		} else {
			repoOpts = append(repoOpts, content.WithSharedCache(shared))
			cleanup = func() { shared.Close() }
		}
	}

	a := &app{
		cfg:      cfg,
		repo:     content.NewRepository(client, repoOpts...),
		renderer: markdown.New(),
		settings: sets,
	}

	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		a.pool = db
		prev := cleanup
		cleanup = func() {
			db.Close()
			prev()
		}
	}

	return a, cleanup, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "lessons":
		return a.cmdLessons(ctx)
	case "browse":
		return a.cmdBrowse(ctx, args)
	case "lesson":
		return a.cmdLesson(ctx, args)
	case "quiz":
		return a.cmdQuiz(ctx, args)
	case "cards":
		return a.cmdCards(ctx, args)
	case "tutor":
		return a.cmdTutor(ctx, args)
	case "theme":
		return a.cmdTheme(args)
	case "key":
		return a.cmdKey(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// tutorEngine builds the tutor with the user's key (settings first, then
// deployment config) and the configured conversation store.
func (a *app) tutorEngine(ctx context.Context) (*tutor.Engine, error) {
	apiKey := a.settings.GeminiAPIKey
	if apiKey == "" {
		apiKey = a.cfg.AI.GoogleAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no Gemini API key: run 'portal key <api-key>' first")
	}

	var convStore tutor.ConversationStore
	if a.pool != nil {
		pg, err := tutor.NewPostgresStore(a.pool.Pool)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		convStore = pg
	}

	return tutor.NewEngine(tutor.EngineConfig{
		Provider: ai.NewGeminiProvider(apiKey),
		Store:    convStore,
		Model:    a.cfg.AI.Model,
	}), nil
}

// parsePath turns the common <year> <branch> <lesson> argument triple into
// a content path.
func parsePath(args []string) (content.Path, error) {
	if len(args) < 3 {
		return content.Path{}, fmt.Errorf("expected <year> <branch> <lesson>")
	}
	return content.Path{Year: args[0], Branch: args[1], Lesson: args[2]}, nil
}
