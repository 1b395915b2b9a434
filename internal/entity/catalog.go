package entity

import "time"

// Catalog entities are produced by the transcription pipeline and read-only
// from the progress engine's point of view.

// Video is one transcribed upload.
type Video struct {
	ID              int64
	Title           string
	Language        string
	DurationSeconds int32
	CreatedAt       time.Time
}

// VideoSegment is a time-bounded slice of a video's transcript, the unit that
// words and exercises attach to.
type VideoSegment struct {
	ID      int64
	VideoID int64
	Index   int32
	StartMS int32
	EndMS   int32
	Text    string
}

// VideoWord is one word occurrence inside a segment.
type VideoWord struct {
	ID        int64
	VideoID   int64
	SegmentID int64
	WordID    int64
	Text      string
}

// VideoExercise is one exercise generated for a segment.
type VideoExercise struct {
	ID        int64
	VideoID   int64
	SegmentID int64
	Kind      string
	Prompt    string
}
