package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MinTitleLength = 3

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	Id          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Order       int        `json:"order"`
	User        string     `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ValidTitle reports whether a title, once trimmed, is long enough to be stored.
func ValidTitle(title string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(title)) >= MinTitleLength
}

type CreateTaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	DueDate     *Date    `json:"dueDate,omitempty"`
}

// UpdateTaskInput carries a partial update. Fields left unset are not sent and
// are not touched server-side; a null description or due date clears it.
type UpdateTaskInput struct {
	Title       Field[string]   `json:"title,omitzero"`
	Description Field[string]   `json:"description,omitzero"`
	Priority    Field[Priority] `json:"priority,omitzero"`
	DueDate     Field[Date]     `json:"dueDate,omitzero"`
	Completed   Field[bool]     `json:"completed,omitzero"`
}

type ToggleInput struct {
	Completed *bool `json:"completed,omitempty"`
}

type OrderUpdate struct {
	Id    string `json:"id"`
	Order int    `json:"order"`
}

type ReorderInput struct {
	Tasks []OrderUpdate `json:"tasks"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
