package testctl

// Indirection layer to allow stubbing in tests

var (
	fnRunGoTests = runGoTests

	fnTestWebMock    = testWebMock
	fnTestWebLive    = testWebLive
	fnTestWebOffline = testWebOffline

	fnAPIReachable = apiReachable

	fnWatch      = watch
	fnPrintRules = printRules
)
