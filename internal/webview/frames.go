package webview

// Methods callable from the hosted web content. Argument order is fixed:
//
//	initAuth(initConfigJsonString, callbackName)
//	startAuth(phoneNumber, callbackName)
//	verifyOtp(phoneNumber, otp, callbackName)
//
// The callback name travels in its own frame field; Args carries the
// remaining positional arguments.
const (
	MethodInitAuth  = "initAuth"
	MethodStartAuth = "startAuth"
	MethodVerifyOtp = "verifyOtp"
)

// callFrame is an inbound method invocation from the hosted page.
type callFrame struct {
	Method   string   `json:"method"`
	Args     []string `json:"args"`
	Callback string   `json:"callback"`
}

// callbackFrame is an outbound callback invocation. The page-side shim runs
// window[Callback](Payload), where Payload is the serialized AuthResponse.
type callbackFrame struct {
	Callback string `json:"callback"`
	Payload  string `json:"payload"`
}
