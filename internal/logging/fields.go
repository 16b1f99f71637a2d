package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (deck_skipped, artifact_written, ...).
	FieldEventType = "event_type"
	// FieldErrorHint carries the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID identifies one extraction or cleanup run.
	FieldRunID = "run_id"
	// FieldDeck is the presentation file being walked.
	FieldDeck = "deck"
	// FieldSlideID is the slide ordinal assigned by the presentation.
	FieldSlideID = "slide_id"
	// FieldArtifact is the canonical image filename.
	FieldArtifact = "artifact"
	// FieldImagePath is the image a rating row refers to.
	FieldImagePath = "impath"
)
