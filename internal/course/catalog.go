// Package course holds the static, ordered course catalog. The content here
// is collaborator data for the core: module identifiers and quiz keys are
// stable, everything else is presentation.
package course

import (
	"fmt"
	"math"
)

type QuizQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

type Module struct {
	ID          string `json:"id"`
	WeekRange   string `json:"weekRange"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	QuizQuestions []QuizQuestion `json:"quizQuestions"`

	// SimulationBlocks lists the content-block indices that carry an
	// interactive chat simulation, used to build completion keys.
	SimulationBlocks []int `json:"simulationBlocks,omitempty"`
}

// GradeQuiz scores submitted answers (option indices, one per question).
// Missing or out-of-range answers count as wrong.
func (m Module) GradeQuiz(answers []int) int {
	n := len(m.QuizQuestions)
	if n == 0 {
		return 0
	}
	correct := 0
	for i, q := range m.QuizQuestions {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(n)))
}

// SimulationKey builds the composite completion key for one interactive
// block of a module.
func SimulationKey(moduleID string, blockIndex int) string {
	return fmt.Sprintf("%s-sim-%d", moduleID, blockIndex)
}

// Catalog is the fixed module order of the course.
type Catalog []Module

func (c Catalog) Len() int { return len(c) }

func (c Catalog) ByID(id string) (Module, bool) {
	for _, m := range c {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// NextIncomplete returns the resume point: the first module whose id is not
// reported done, or the last module when everything is complete. Empty
// catalogs resume nowhere.
func (c Catalog) NextIncomplete(done func(id string) bool) string {
	if len(c) == 0 {
		return ""
	}
	for _, m := range c {
		if !done(m.ID) {
			return m.ID
		}
	}
	return c[len(c)-1].ID
}
