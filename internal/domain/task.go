package domain

// Task is a single persisted note. Tasks are never updated after creation.
type Task struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// Date is the creation time in milliseconds since the Unix epoch.
	Date int64 `json:"date"`
}
