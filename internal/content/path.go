// Package content resolves hierarchical content paths into lesson artifacts
// fetched from the remote content store, with per-path memoized caching and
// bulk lesson discovery.
package content

import "fmt"

const (
	lessonsRoot   = "lessons"
	questionsRoot = "questions"
	lessonExt     = ".md"
)

// Path identifies one lesson: year, branch (subject), and lesson slug.
// All segments are opaque lowercase hyphen-separated slugs. Paths are
// values; equality is structural.
type Path struct {
	Year   string
	Branch string
	Lesson string
}

func (p Path) String() string {
	return fmt.Sprintf("%s/%s/%s", p.Year, p.Branch, p.Lesson)
}

// markdownPath is the repository location of the lesson body.
func (p Path) markdownPath() string {
	return fmt.Sprintf("%s/%s/%s/%s%s", lessonsRoot, p.Year, p.Branch, p.Lesson, lessonExt)
}

// quizPath is the repository location of the lesson's quiz/flashcard file.
func (p Path) quizPath() string {
	return fmt.Sprintf("%s/%s/%s/%s.json", questionsRoot, p.Year, p.Branch, p.Lesson)
}
