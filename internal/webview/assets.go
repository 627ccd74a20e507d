package webview

import _ "embed"

//go:embed assets/index.html
var demoPage []byte

// DemoPage returns the embedded demo page, including the JavaScript shim
// that turns callback frames into window[callbackName] invocations.
func DemoPage() []byte {
	return demoPage
}
