// Package errors provides the coded errors domkit reports on its command
// line and configuration surfaces.
//
// Each code maps to a registered template with a category, a short message
// and a longer explanation. Call sites add the specifics:
//
//	err := errors.New("E122").
//	    WithDetail("server.port must be between 1 and 65535, got 70000").
//	    WithLocation("domkit.yaml", 4, 9).
//	    WithSuggestion("Pick a free port such as 8080")
//
//	errors.PrintError(os.Stderr, err)
//	// ERROR E122: Invalid port
//	//
//	//   domkit.yaml:4:9
//	//
//	//        3 │ server:
//	//     →  4 │   port: 70000
//	//          │         ^
//	//
//	//   server.port must be between 1 and 65535, got 70000
//	//
//	//   Hint: Pick a free port such as 8080
//
// Codes are grouped by category:
//   - E06x protocol: websocket bridge failures
//   - E08x api: quote API failures
//   - E12x config: configuration file problems
//   - E14x cli: command failures
package errors
