package config_test

import (
	"fmt"
	"time"

	"github.com/ber2minsin/intime/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Capture Interval:", cfg.Capture.Interval)
	fmt.Println("Web Port:", cfg.Web.Port)
	// Output:
	// Capture Interval: 10s
	// Web Port: 8080
}

// Example of setting the capture interval with validation
func ExampleConfig_SetCaptureInterval() {
	cfg := config.Default()

	// Valid interval
	if err := cfg.SetCaptureInterval(30 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Capture interval set to:", cfg.Capture.Interval)
	}

	// Invalid interval (too low)
	if err := cfg.SetCaptureInterval(500 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Capture interval set to: 30s
	// Error: capture interval cannot be less than 1s
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Configuration is valid
}
