// Package values contains domain value objects.
package values

import "strings"

// Platform is the runtime's reported platform identifier.
type Platform string

const (
	// PlatformIOS is a native iOS runtime.
	PlatformIOS Platform = "ios"
	// PlatformAndroid is a native Android runtime.
	PlatformAndroid Platform = "android"
	// PlatformWeb is a browser-like runtime without OS permission gating.
	PlatformWeb Platform = "web"
)

// ParsePlatform normalizes a platform identifier. Unknown identifiers are kept
// as-is and treated as non-native.
func ParsePlatform(s string) Platform {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PlatformWeb
	}
	return p
}

// IsNativeCapable reports whether the platform gates capabilities through the OS.
func (p Platform) IsNativeCapable() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

func (p Platform) String() string {
	return string(p)
}
