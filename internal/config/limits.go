package config

const (
	// MaxDirectoryNameLength is the maximum length for directory names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxDirectoryNameLength = 255

	// MaxDescriptionLength is the maximum length for directory descriptions.
	MaxDescriptionLength = 1000

	// MaxPathLength is the maximum length for full materialized paths.
	// Longer paths indicate overly deep hierarchies (anti-pattern).
	MaxPathLength = 500
)
