// ABOUTME: Build and product identification
// ABOUTME: Constants reported in hello messages, health checks and -version output
package version

// Version information
const (
	Version      = "0.3.0"
	Product      = "tonetable"
	Manufacturer = "Resonate"
)

// String returns "product version"
func String() string {
	return Product + " " + Version
}
