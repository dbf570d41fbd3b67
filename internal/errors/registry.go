package errors

import "sort"

// ErrorTemplate is the registered shape of a code.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://github.com/vango-go/domkit/blob/main/docs/errors.md#"

var registry = map[string]ErrorTemplate{
	// Protocol (E060-E079)
	"E060": {
		Category: CategoryProtocol,
		Message:  "WebSocket connection failed",
		Detail:   "The hub bridge could not be reached.",
		DocURL:   docBase + "e060",
	},

	// API (E080-E099)
	"E080": {
		Category: CategoryAPI,
		Message:  "Quote API request failed",
		Detail:   "The quote API returned an error or could not be reached.",
		DocURL:   docBase + "e080",
	},
	"E081": {
		Category: CategoryAPI,
		Message:  "Invalid auth token",
		Detail:   "The API rejected the token. Tokens are numeric user ids.",
		DocURL:   docBase + "e081",
	},

	// Config (E120-E139)
	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   docBase + "e120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml, .yml or .toml.",
		DocURL:   docBase + "e121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "The server port must be between 1 and 65535.",
		DocURL:   docBase + "e122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid path",
		Detail:   "Route paths must start with a slash.",
		DocURL:   docBase + "e123",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Invalid log settings",
		Detail:   "Log level must be debug, info, warn or error, and format must be text or json.",
		DocURL:   docBase + "e124",
	},
	"E125": {
		Category: CategoryConfig,
		Message:  "Invalid loop settings",
		Detail:   "The frame interval must be a positive duration and the queue size positive.",
		DocURL:   docBase + "e125",
	},
	"E126": {
		Category: CategoryConfig,
		Message:  "Invalid hub settings",
		Detail:   "The data hub name must not be empty.",
		DocURL:   docBase + "e126",
	},

	// CLI (E140-E159)
	"E140": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The server stopped with an error.",
		DocURL:   docBase + "e140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Export failed",
		Detail:   "The quote snapshot could not be written.",
		DocURL:   docBase + "e141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "No export bucket",
		Detail:   "Exporting needs a bucket from export.bucket or --bucket.",
		DocURL:   docBase + "e142",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Demo failed",
		Detail:   "The headless quote view could not be rendered.",
		DocURL:   docBase + "e143",
	},
}

// GetAllCodes returns every registered code in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template of code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
