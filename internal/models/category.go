package models

// Category is a named bucket transactions can reference. A nil UserID marks
// a global category visible to every user.
type Category struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	UserID *string `json:"userId,omitempty"`
}
