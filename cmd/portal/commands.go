package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/content"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/flashcards"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/platform/settings"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/quiz"
)

func (a *app) cmdLessons(ctx context.Context) error {
	lessons, err := a.repo.DiscoverAllLessons(ctx)
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		fmt.Println("No content has been added yet.")
		return nil
	}
	for _, l := range lessons {
		fmt.Printf("%-12s %-24s %-28s %s\n", l.Path.Year, l.Path.Branch, l.Path.Lesson, l.Title)
	}
	return nil
}

func (a *app) cmdBrowse(ctx context.Context, args []string) error {
	prefix := "lessons"
	if len(args) > 0 {
		prefix = "lessons/" + strings.Join(args, "/")
	}

	children, err := a.repo.ListChildren(ctx, prefix)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		fmt.Println("No content has been added to this section yet.")
		return nil
	}
	for _, c := range children {
		name := strings.TrimSuffix(c.Name, ".md")
		kind := "lesson"
		if c.IsDir {
			kind = "dir"
		}
		fmt.Printf("%-8s %s\n", kind, content.FormatTitle(name))
	}
	return nil
}

func (a *app) cmdLesson(ctx context.Context, args []string) error {
	p, err := parsePath(args)
	if err != nil {
		return err
	}

	lesson, err := a.repo.ResolveLesson(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to load lesson content: %w", err)
	}

	html, err := a.renderer.Render(lesson.BodyMarkdown)
	if err != nil {
		return err
	}

	fmt.Printf("<!-- %s -->\n", lesson.Title)
	fmt.Println(html)
	if lesson.Quiz == nil {
		fmt.Fprintln(os.Stderr, "No MCQs available for this lesson.")
	}
	if lesson.Flashcards == nil {
		fmt.Fprintln(os.Stderr, "No flash cards available for this lesson.")
	}
	return nil
}

func (a *app) cmdQuiz(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quiz", flag.ContinueOnError)
	export := fs.String("export", "", "write the review report to this xlsx file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := parsePath(fs.Args())
	if err != nil {
		return err
	}

	lesson, err := a.repo.ResolveLesson(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to load lesson content: %w", err)
	}
	if lesson.Quiz == nil {
		fmt.Println("No MCQs available for this lesson.")
		return nil
	}

	session, err := quiz.New(lesson.Quiz)
	if err != nil {
		return err
	}

	fmt.Printf("%s — %d questions. Answer with a number; n=next, p=previous, r=restart, q=quit.\n\n",
		lesson.Title, session.Len())

	scanner := bufio.NewScanner(os.Stdin)
	for !session.Finished() {
		printQuestion(session)

		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "q":
			return nil
		case "n":
			session.Advance()
		case "p":
			session.Retreat()
		case "r":
			session.Restart()
			fmt.Println("Restarted.")
		default:
			n, err := strconv.Atoi(input)
			if err != nil {
				fmt.Println("Enter an option number, or n/p/r/q.")
				continue
			}
			idx, q := session.Current()
			if n < 1 || n > len(q.Options) {
				fmt.Printf("Option must be 1-%d.\n", len(q.Options))
				continue
			}
			if session.Answered(idx) {
				fmt.Println("Already answered; answers are locked. Use n to move on.")
				continue
			}
			session.Select(n - 1)
			showFeedback(session, idx)
		}
	}

	fmt.Printf("\nFinished! Score: %d / %d\n\n", session.Score(), session.Len())
	printReview(session.Review())

	if *export != "" {
		if err := quiz.ExportReview(session.Review(), session.Score(), session.Len(), *export); err != nil {
			return err
		}
		fmt.Println("Review report written to", *export)
	}
	return nil
}

func printQuestion(session *quiz.Session) {
	idx, q := session.Current()
	fmt.Printf("Q%d/%d: %s\n", idx+1, session.Len(), q.Stem)
	for i, opt := range q.Options {
		marker := " "
		if session.Answer(idx) == i {
			marker = "*"
		}
		fmt.Printf("  %s %d) %s\n", marker, i+1, opt)
	}
	fmt.Print("> ")
}

func showFeedback(session *quiz.Session, idx int) {
	_, q := session.Current()
	if session.Answer(idx) == q.Correct {
		fmt.Println("Correct!")
	} else {
		fmt.Printf("Incorrect. The correct answer is: %s\n", q.Options[q.Correct])
	}
	if q.Explanation != "" {
		fmt.Println(q.Explanation)
	}
	fmt.Println()
}

func printReview(items []quiz.ReviewItem) {
	for i, item := range items {
		result := "✗"
		if item.Correct {
			result = "✓"
		}
		selected := item.Selected
		if !item.Answered {
			selected = "unanswered"
		}
		fmt.Printf("%s Q%d: %s\n   your answer: %s\n   correct:     %s\n", result, i+1, item.Stem, selected, item.CorrectText)
		if item.Explanation != "" {
			fmt.Printf("   %s\n", item.Explanation)
		}
	}
}

func (a *app) cmdCards(ctx context.Context, args []string) error {
	p, err := parsePath(args)
	if err != nil {
		return err
	}

	lesson, err := a.repo.ResolveLesson(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to load lesson content: %w", err)
	}
	if lesson.Flashcards == nil {
		fmt.Println("No flash cards available for this lesson.")
		return nil
	}

	deck, err := flashcards.New(lesson.Flashcards)
	if err != nil {
		return err
	}

	fmt.Printf("%s — %d cards. Enter=flip, n=next, p=previous, q=quit.\n\n", lesson.Title, deck.Len())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		idx, card := deck.Current()
		side, text := "front", card.Front
		if deck.Flipped() {
			side, text = "back", card.Back
		}
		fmt.Printf("Card %d/%d (%s): %s\n> ", idx+1, deck.Len(), side, text)

		if !scanner.Scan() {
			return scanner.Err()
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "q":
			return nil
		case "n":
			deck.Next()
		case "p":
			deck.Prev()
		default:
			deck.Flip()
		}
	}
}

func (a *app) cmdTutor(ctx context.Context, args []string) error {
	p, err := parsePath(args)
	if err != nil {
		return err
	}

	engine, err := a.tutorEngine(ctx)
	if err != nil {
		return err
	}

	lesson, err := a.repo.ResolveLesson(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to load lesson content: %w", err)
	}

	convID, welcome, err := engine.StartLesson(lesson)
	if err != nil {
		return err
	}
	defer engine.End(convID)

	fmt.Println(welcome)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			return nil
		}

		reply, err := engine.Ask(ctx, convID, text)
		if err != nil {
			return err
		}
		fmt.Println("tutor>", reply)
	}
}

func (a *app) cmdTheme(args []string) error {
	if len(args) == 0 {
		fmt.Println(a.settings.Theme)
		return nil
	}

	theme := strings.ToLower(args[0])
	if theme != settings.ThemeLight && theme != settings.ThemeDark {
		return fmt.Errorf("theme must be %q or %q", settings.ThemeLight, settings.ThemeDark)
	}
	a.settings.Theme = theme
	if err := a.settings.Save(a.cfg.SettingsPath); err != nil {
		return err
	}
	fmt.Println("Theme set to", theme)
	return nil
}

func (a *app) cmdKey(args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("expected an API key")
	}
	a.settings.GeminiAPIKey = strings.TrimSpace(args[0])
	if err := a.settings.Save(a.cfg.SettingsPath); err != nil {
		return err
	}
	fmt.Println("API key saved.")
	return nil
}
