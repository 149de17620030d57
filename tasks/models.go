// Package tasks implements the personal to-do items of each user.
// Every read and write is scoped to the calling user: a task owned by someone else is
// indistinguishable from one that does not exist.
package tasks

// Task is a row of the `task` table. UserID is fixed at creation.
type Task struct {
	ID        int64
	Content   string
	Completed bool
	UserID    int64
}

// Filter narrows `GET /tasks/filter`. Zero values do not filter.
type Filter struct {
	Content   string // case-insensitive substring
	Completed *bool
}
