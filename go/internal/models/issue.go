package models

import "time"

// IssueStatus defines where an issue is in its estimation lifecycle.
type IssueStatus string

const (
	IssueStatusPending IssueStatus = "pending"
	IssueStatusVoting  IssueStatus = "voting"
	IssueStatusVoted   IssueStatus = "voted"
)

// Valid reports whether s is a known issue status.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusPending, IssueStatusVoting, IssueStatusVoted:
		return true
	}
	return false
}

// Issue is one estimable work item of a game.
type Issue struct {
	ID          string      `json:"id"`
	GameID      string      `json:"game_id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Status      IssueStatus `json:"status"`
	FinalScore  *float64    `json:"final_score"`
	SortOrder   int         `json:"sort_order"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
}

// IsEstimated reports whether the issue has been revealed with a score.
func (i Issue) IsEstimated() bool {
	return i.Status == IssueStatusVoted && i.FinalScore != nil
}

// IssuePatch carries the fields of an issue update. Nil pointers leave a field untouched;
// the Clear flags null out nullable columns.
type IssuePatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *IssueStatus
	FinalScore       *float64
	ClearFinalScore  bool
	SortOrder        *int
	Version          *int64
}

// Apply returns a copy of issue with the patch applied.
func (p IssuePatch) Apply(issue Issue) Issue {
	if p.Title != nil {
		issue.Title = *p.Title
	}
	if p.ClearDescription {
		issue.Description = nil
	} else if p.Description != nil {
		d := *p.Description
		issue.Description = &d
	}
	if p.Status != nil {
		issue.Status = *p.Status
	}
	if p.ClearFinalScore {
		issue.FinalScore = nil
	} else if p.FinalScore != nil {
		s := *p.FinalScore
		issue.FinalScore = &s
	}
	if p.SortOrder != nil {
		issue.SortOrder = *p.SortOrder
	}
	if p.Version != nil {
		issue.Version = *p.Version
	}
	return issue
}
