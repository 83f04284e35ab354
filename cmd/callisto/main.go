// Callisto is a risk-governed generation gateway.
//
// Every request passes an evidence sufficiency gate, a risk-energy
// governor, and an action-risk policy gate before an answer provider is
// allowed to generate. Requests with too little evidence are damped or
// projected into clarification; requests planning risky actions are
// blocked outright.
//
// Usage:
//
//	# Start the HTTP gateway with default configuration
//	callisto run
//
//	# Start with a custom configuration file
//	callisto run --config /etc/callisto/config.yaml
//
//	# Validate a configuration file
//	callisto validate --config config.yaml
//
//	# Run the built-in demo scenarios offline
//	callisto demo
//
//	# Show version information
//	callisto version
package main

func main() {
	Execute()
}
