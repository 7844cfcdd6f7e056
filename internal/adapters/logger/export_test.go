// export_test.go exports private functions for white-box testing.
package logger

// Error formatting internals exported for tests.
var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)
