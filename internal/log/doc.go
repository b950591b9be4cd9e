// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// maildigest handles two kinds of secrets that must never reach log
// output: the OpenAI API key and mailbox credentials. The SecureHandler
// masks attribute values whose keys or shapes look like credentials,
// even in verbose mode, so debug logs stay safe to share.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("request sent",
//	    "api_key", "sk-abc123...", // Will be masked
//	    "url", "https://api.openai.com/v1/files",
//	)
//	slog.SetDefault(logger)
package log
