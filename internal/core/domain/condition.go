package domain

import "slices"

// Answer is the result of evaluating a Condition.
type Answer int

const (
	// AnswerNo selects the negative branch of a Conditional.
	AnswerNo Answer = iota
	// AnswerYes selects the positive branch of a Conditional.
	AnswerYes
)

// String returns "yes" or "no".
func (a Answer) String() string {
	if a == AnswerYes {
		return "yes"
	}
	return "no"
}

// AnswerOf converts a boolean into an Answer.
func AnswerOf(b bool) Answer {
	if b {
		return AnswerYes
	}
	return AnswerNo
}

// Condition is a yes/no check guarding a Conditional.
// The set of implementations is closed.
type Condition interface {
	// Describe returns a human-readable rendering of the condition.
	Describe() string
	isCondition()
}

// PathPresent answers yes when Path exists, whether it is a file or a directory.
type PathPresent struct {
	Path string
}

// ContentDiffers answers yes when Left and Right have different contents.
type ContentDiffers struct {
	Left  string
	Right string
}

// Question asks the user and answers with their reply.
type Question struct {
	Prompt string
}

func (PathPresent) isCondition()    {}
func (ContentDiffers) isCondition() {}
func (Question) isCondition()       {}

// Describe implements Condition.
func (c PathPresent) Describe() string {
	return c.Path + " exists"
}

// Describe implements Condition.
func (c ContentDiffers) Describe() string {
	return c.Left + " differs from " + c.Right
}

// Describe implements Condition.
func (c Question) Describe() string {
	return "user confirms " + `"` + c.Prompt + `"`
}

// OrderConditions returns a copy of conditions with every Question moved
// behind the non-interactive checks. Relative order is otherwise kept.
func OrderConditions(conditions []Condition) []Condition {
	ordered := slices.Clone(conditions)
	slices.SortStableFunc(ordered, func(a, b Condition) int {
		return questionRank(a) - questionRank(b)
	})
	return ordered
}

func questionRank(c Condition) int {
	if _, ok := c.(Question); ok {
		return 1
	}
	return 0
}
