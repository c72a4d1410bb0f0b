package models

// PracticeQuestion is one generated practice item; it is never persisted.
type PracticeQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}
