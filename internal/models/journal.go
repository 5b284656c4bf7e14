package models

import (
	"time"
)

type Mood string

const (
	MoodHappy    Mood = "Happy"
	MoodCalm     Mood = "Calm"
	MoodAnxious  Mood = "Anxious"
	MoodExcited  Mood = "Excited"
	MoodConfused Mood = "Confused"
	MoodSad      Mood = "Sad"
	MoodNeutral  Mood = "Neutral"
	MoodInspired Mood = "Inspired"
)

// Moods lists every mood in the order the entry form offers them.
var Moods = []Mood{MoodHappy, MoodCalm, MoodAnxious, MoodExcited, MoodConfused, MoodSad, MoodNeutral, MoodInspired}

type JournalEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required"`
	Body      string    `json:"content" validate:"required"`
	Mood      Mood      `json:"mood" validate:"required,oneof=Happy Calm Anxious Excited Confused Sad Neutral Inspired"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"timestamp"`
	Image     string    `json:"imageUrl,omitempty" validate:"omitempty,startswith=data:image/"`
}

// EntryInput is what a caller may set on create or update. ID and CreatedAt are owned by storage.
type EntryInput struct {
	Title string   `json:"title"`
	Body  string   `json:"content"`
	Mood  Mood     `json:"mood"`
	Tags  []string `json:"tags"`
	Image string   `json:"imageUrl,omitempty"`
}
