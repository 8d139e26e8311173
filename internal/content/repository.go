package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/flashcards"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/quiz"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/store"
)

// Store is the slice of the content store client the repository needs.
type Store interface {
	Contents(ctx context.Context, path string) ([]store.Entry, error)
	Tree(ctx context.Context) ([]store.TreeEntry, error)
	RawFile(ctx context.Context, path string) (string, error)
}

// SharedCache mirrors successful discovery results to an external cache so
// separate portal processes can share them. It is strictly optional; the
// in-process memoization below is the authoritative cache.
type SharedCache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// Child is one immediate child of a content path prefix.
type Child struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// LessonSummary identifies a discovered lesson.
type LessonSummary struct {
	Path  Path   `json:"path"`
	Title string `json:"title"`
}

// LessonArtifact is a fully resolved lesson. It is immutable after
// resolution; Quiz and Flashcards are nil for prose-only lessons, which is
// a valid end state rather than an error.
type LessonArtifact struct {
	Path         Path
	Title        string
	BodyMarkdown string
	Quiz         []quiz.Question
	Flashcards   []flashcards.Card
}

// Repository resolves content paths against the remote store.
//
// Every successful listing, discovery, and resolution is memoized by exact
// input path for the life of the process; failures are never cached, so a
// later retry re-fetches. Concurrent requests for the same key coalesce to
// a single underlying fetch.
type Repository struct {
	store  Store
	shared SharedCache

	group singleflight.Group

	mu         sync.RWMutex
	listings   map[string][]Child
	lessons    map[string]*LessonArtifact
	summaries  []LessonSummary
	discovered bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithSharedCache attaches an external cache mirror.
func WithSharedCache(c SharedCache) Option {
	return func(r *Repository) {
		r.shared = c
	}
}

// NewRepository creates a content repository over the given store.
func NewRepository(st Store, opts ...Option) *Repository {
	r := &Repository{
		store:    st,
		listings: make(map[string][]Child),
		lessons:  make(map[string]*LessonArtifact),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListChildren lists the immediate children under a content path prefix.
// A prefix the remote does not know yields an empty listing, not an error:
// a section with no content yet is normal. Transient fetch failures
// propagate and are never cached.
func (r *Repository) ListChildren(ctx context.Context, pathPrefix string) ([]Child, error) {
	r.mu.RLock()
	children, ok := r.listings[pathPrefix]
	r.mu.RUnlock()
	if ok {
		return children, nil
	}

	v, err, _ := r.group.Do("contents:"+pathPrefix, func() (any, error) {
		return r.fetchChildren(ctx, pathPrefix)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Child), nil
}

func (r *Repository) fetchChildren(ctx context.Context, pathPrefix string) ([]Child, error) {
	// Another coalesced caller may have completed while we queued.
	r.mu.RLock()
	children, ok := r.listings[pathPrefix]
	r.mu.RUnlock()
	if ok {
		return children, nil
	}

	cacheKey := "portal:contents:" + pathPrefix
	if r.shared != nil {
		var cached []Child
		if ok, err := r.shared.GetJSON(ctx, cacheKey, &cached); err != nil {
			slog.Warn("shared cache read failed", "key", cacheKey, "error", err)
		} else if ok {
			r.remember(pathPrefix, cached)
			return cached, nil
		}
	}

	entries, err := r.store.Contents(ctx, pathPrefix)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("list %s: %w", pathPrefix, err)
		}
		entries = nil
	}

	children = make([]Child, 0, len(entries))
	for _, e := range entries {
		children = append(children, Child{Name: e.Name, IsDir: e.IsDir})
	}

	r.remember(pathPrefix, children)
	if r.shared != nil {
		if err := r.shared.SetJSON(ctx, cacheKey, children); err != nil {
			slog.Warn("shared cache write failed", "key", cacheKey, "error", err)
		}
	}
	return children, nil
}

func (r *Repository) remember(pathPrefix string, children []Child) {
	r.mu.Lock()
	r.listings[pathPrefix] = children
	r.mu.Unlock()
}

// DiscoverAllLessons walks the recursive repository manifest once and
// returns every recognized lesson, in manifest order. Only paths of the
// exact shape lessons/<year>/<branch>/<lesson>.md are kept; anything
// shallower, deeper, or with another extension is silently skipped. That
// filter is intentional: the content repo also holds question files and
// assets that are not lessons.
func (r *Repository) DiscoverAllLessons(ctx context.Context) ([]LessonSummary, error) {
	r.mu.RLock()
	discovered, summaries := r.discovered, r.summaries
	r.mu.RUnlock()
	if discovered {
		return summaries, nil
	}

	v, err, _ := r.group.Do("manifest", func() (any, error) {
		return r.fetchAllLessons(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]LessonSummary), nil
}

func (r *Repository) fetchAllLessons(ctx context.Context) ([]LessonSummary, error) {
	r.mu.RLock()
	discovered, summaries := r.discovered, r.summaries
	r.mu.RUnlock()
	if discovered {
		return summaries, nil
	}

	const cacheKey = "portal:lessons"
	if r.shared != nil {
		var cached []LessonSummary
		if ok, err := r.shared.GetJSON(ctx, cacheKey, &cached); err != nil {
			slog.Warn("shared cache read failed", "key", cacheKey, "error", err)
		} else if ok {
			r.rememberSummaries(cached)
			return cached, nil
		}
	}

	tree, err := r.store.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch content manifest: %w", err)
	}

	summaries = make([]LessonSummary, 0, len(tree))
	for _, entry := range tree {
		if entry.Type != "blob" {
			continue
		}
		parts := strings.Split(entry.Path, "/")
		if len(parts) != 4 || parts[0] != lessonsRoot || !strings.HasSuffix(parts[3], lessonExt) {
			continue
		}
		id := strings.TrimSuffix(parts[3], lessonExt)
		summaries = append(summaries, LessonSummary{
			Path:  Path{Year: parts[1], Branch: parts[2], Lesson: id},
			Title: FormatTitle(id),
		})
	}

	r.rememberSummaries(summaries)
	if r.shared != nil {
		if err := r.shared.SetJSON(ctx, cacheKey, summaries); err != nil {
			slog.Warn("shared cache write failed", "key", cacheKey, "error", err)
		}
	}
	return summaries, nil
}

func (r *Repository) rememberSummaries(summaries []LessonSummary) {
	r.mu.Lock()
	r.summaries = summaries
	r.discovered = true
	r.mu.Unlock()
}

// ResolveLesson fetches a lesson's markdown body and, independently, its
// quiz/flashcard file. The two fetches run concurrently. The quiz fetch is
// best-effort: a missing or malformed file leaves Quiz and Flashcards nil.
// Only a body fetch failure fails the resolution.
func (r *Repository) ResolveLesson(ctx context.Context, p Path) (*LessonArtifact, error) {
	key := p.String()

	r.mu.RLock()
	artifact, ok := r.lessons[key]
	r.mu.RUnlock()
	if ok {
		return artifact, nil
	}

	v, err, _ := r.group.Do("lesson:"+key, func() (any, error) {
		return r.fetchLesson(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return v.(*LessonArtifact), nil
}

func (r *Repository) fetchLesson(ctx context.Context, p Path) (*LessonArtifact, error) {
	key := p.String()

	r.mu.RLock()
	artifact, ok := r.lessons[key]
	r.mu.RUnlock()
	if ok {
		return artifact, nil
	}

	var (
		body  string
		mcqs  []quiz.Question
		cards []flashcards.Card
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := r.store.RawFile(gctx, p.markdownPath())
		if err != nil {
			return fmt.Errorf("fetch lesson %s: %w", key, err)
		}
		body = b
		return nil
	})
	g.Go(func() error {
		raw, err := r.store.RawFile(gctx, p.quizPath())
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) && gctx.Err() == nil {
				slog.Warn("quiz fetch failed, continuing without quiz", "lesson", key, "error", err)
			}
			return nil
		}
		m, c, err := parseQuizFile([]byte(raw))
		if err != nil {
			slog.Warn("skipping malformed quiz file", "lesson", key, "error", err)
			return nil
		}
		mcqs, cards = m, c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	artifact = &LessonArtifact{
		Path:         p,
		Title:        FormatTitle(p.Lesson),
		BodyMarkdown: body,
		Quiz:         mcqs,
		Flashcards:   cards,
	}

	r.mu.Lock()
	r.lessons[key] = artifact
	r.mu.Unlock()

	return artifact, nil
}
