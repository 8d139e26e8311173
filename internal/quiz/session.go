// Package quiz implements the single-lesson quiz runner: a fixed ordered
// list of multiple-choice questions, locked answers, deferred scoring, and
// a per-question review report.
package quiz

import "fmt"

// Question is one multiple-choice question as stored in a lesson's quiz file.
type Question struct {
	Stem        string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// unanswered marks a question with no recorded answer.
const unanswered = -1

// Session is a single quiz attempt over a fixed question list.
//
// Questions are presented in input order, never reshuffled, so review by
// index is deterministic. A Session is not safe for concurrent use; one
// attempt belongs to one user interaction at a time.
type Session struct {
	questions []Question
	answers   []int
	current   int
	finished  bool
	score     int
}

// New creates a session over the given questions. Presenting an empty quiz
// is the caller's empty-state, not a session; New rejects it.
func New(questions []Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz has no questions")
	}
	s := &Session{questions: questions}
	s.reset()
	return s, nil
}

func (s *Session) reset() {
	s.answers = make([]int, len(s.questions))
	for i := range s.answers {
		s.answers[i] = unanswered
	}
	s.current = 0
	s.finished = false
	s.score = 0
}

// Len returns the number of questions.
func (s *Session) Len() int { return len(s.questions) }

// Current returns the index and content of the question being presented.
// After the session finishes it keeps reporting the last question.
func (s *Session) Current() (int, Question) {
	return s.current, s.questions[s.current]
}

// Answered reports whether question i has a recorded answer.
func (s *Session) Answered(i int) bool {
	if i < 0 || i >= len(s.answers) {
		return false
	}
	return s.answers[i] != unanswered
}

// Answer returns the recorded option index for question i, or -1 if the
// question is unanswered.
func (s *Session) Answer(i int) int {
	if i < 0 || i >= len(s.answers) {
		return unanswered
	}
	return s.answers[i]
}

// Select records an answer for the current question. Answers are immutable
// once set: selecting again, selecting after the session finished, or
// selecting an option outside the question's range leaves state untouched.
func (s *Session) Select(option int) {
	if s.finished {
		return
	}
	if option < 0 || option >= len(s.questions[s.current].Options) {
		return
	}
	if s.answers[s.current] != unanswered {
		return
	}
	s.answers[s.current] = option
}

// Advance moves to the next question. Skipping an unanswered question is
// allowed. Advancing past the last question finishes the session and fixes
// the score.
func (s *Session) Advance() {
	if s.finished {
		return
	}
	if s.current < len(s.questions)-1 {
		s.current++
		return
	}
	s.finished = true
	s.score = s.computeScore()
}

// Retreat moves back one question. At the first question, or once finished,
// it is a no-op.
func (s *Session) Retreat() {
	if s.finished || s.current == 0 {
		return
	}
	s.current--
}

// Restart clears all answers and returns to the first question. Legal in
// any state, including Finished.
func (s *Session) Restart() {
	s.reset()
}

// Finished reports whether the session has passed the last question.
func (s *Session) Finished() bool { return s.finished }

// Score returns the number of correctly answered questions. It is zero
// until the session finishes.
func (s *Session) Score() int { return s.score }

func (s *Session) computeScore() int {
	score := 0
	for i, q := range s.questions {
		if s.answers[i] == q.Correct {
			score++
		}
	}
	return score
}

// ReviewItem pairs one question with the user's answer and the correct one.
type ReviewItem struct {
	Stem        string
	Selected    string // "" when unanswered
	Answered    bool
	CorrectText string
	Correct     bool
	Explanation string
}

// Review returns one item per question in presentation order. Unanswered
// questions appear with Answered=false and count as incorrect.
func (s *Session) Review() []ReviewItem {
	items := make([]ReviewItem, len(s.questions))
	for i, q := range s.questions {
		item := ReviewItem{
			Stem:        q.Stem,
			CorrectText: q.Options[q.Correct],
			Explanation: q.Explanation,
		}
		if a := s.answers[i]; a != unanswered {
			item.Answered = true
			item.Selected = q.Options[a]
			item.Correct = a == q.Correct
		}
		items[i] = item
	}
	return items
}
