package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Runtime Errors (E001-E099)
	// ============================================

	"E001": {
		Category:   CategoryRuntime,
		Message:    "Disposed view model accessed",
		Suggestion: "Stop using a view model after Dispose; re-read the parent property to get a fresh child",
	},
	"E002": {
		Category:   CategoryRuntime,
		Message:    "Duplicate extra connection",
		Suggestion: "Each source can be connected to a view model only once; call RemoveExtraConnection first",
	},
	"E003": {
		Category:   CategoryRuntime,
		Message:    "Child type mismatch",
		Suggestion: "Use a distinct property name for each child type",
	},
	"E004": {
		Category:   CategoryRuntime,
		Message:    "Invalid view model initialization",
		Suggestion: "Call Init exactly once, passing the view model that embeds the Base",
	},
	"E006": {
		Category:   CategoryRuntime,
		Message:    "Uncomparable change source",
		Suggestion: "Use a pointer to the source as the extra connection",
	},

	// ============================================
	// Declaration Errors (E050-E099)
	// ============================================

	"E050": {
		Category:   CategoryDeclaration,
		Message:    "Invalid dependency declaration",
		Suggestion: "Check the handler receiver type and the property names passed to the table",
	},

	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	"E120": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check that vmbase.json is valid JSON",
	},
	"E121": {
		Category:   CategoryConfig,
		Message:    "Invalid environment configuration",
		Suggestion: "Check the VMBASE_* environment variables",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// CLI Errors (E200-E249)
	// ============================================

	"E200": {
		Category:   CategoryCLI,
		Message:    "Snapshot export not configured",
		Suggestion: "Set snapshot.bucket in vmbase.json or VMBASE_SNAPSHOT_BUCKET",
	},
	"E201": {
		Category: CategoryCLI,
		Message:  "Snapshot export failed",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
