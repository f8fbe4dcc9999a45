package config

// Application constants
const (
	// Application Info
	AppName    = "Logos Living Capital"
	AppVersion = "1.0.0"

	// Storage
	DefaultUploadsDir = "uploads"
	DefaultLogsDir    = "logs"
	RawDirName        = "raw"
	ProcessedDirName  = "processed"

	// Narrative providers
	ProviderGemini = "gemini"
	ProviderStatic = "static"

	DefaultNarrativeModel = "gemini-2.5-flash"

	// Reporting
	DefaultReportTitle = "Financial Report"
	DefaultTopN        = 10
)
