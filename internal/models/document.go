package models

import "time"

// DocumentKind identifies which pipeline stage produced a document.
type DocumentKind string

const (
	DocumentPRD          DocumentKind = "prd"
	DocumentArchitecture DocumentKind = "architecture"
)

// StageDocument records a document (PRD, architecture) written to the
// target repository by a pipeline stage.
type StageDocument struct {
	ID        string
	RunID     string
	Kind      DocumentKind
	Path      string
	Title     string
	CreatedAt time.Time
}
