package mqtt

import "fmt"

// Topic prefixes for the Lumen MQTT surface.
//
// Scheme: lumen/{category}/{subject}
const (
	// TopicPrefix is the base for all Lumen topics.
	TopicPrefix = "lumen"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "lumen/system"
)

// Topics provides builders for Lumen MQTT topics. Using these helpers
// keeps topic naming consistent across publishers and subscribers.
type Topics struct{}

// CommandSetpoint returns the topic operators publish setpoint requests to.
//
// Example: lumen/command/setpoint
func (Topics) CommandSetpoint() string {
	return fmt.Sprintf("%s/command/setpoint", TopicPrefix)
}

// CommandOverrideClear returns the topic that releases manual overrides.
//
// Example: lumen/command/override/clear
func (Topics) CommandOverrideClear() string {
	return fmt.Sprintf("%s/command/override/clear", TopicPrefix)
}

// StateDecision returns the topic the latest applied decision is published
// on. Published retained so new subscribers see the current state.
//
// Example: lumen/state/decision
func (Topics) StateDecision() string {
	return fmt.Sprintf("%s/state/decision", TopicPrefix)
}

// StateDiagnostics returns the topic for actuator diagnostics.
//
// Example: lumen/state/diagnostics
func (Topics) StateDiagnostics() string {
	return fmt.Sprintf("%s/state/diagnostics", TopicPrefix)
}

// SystemStatus returns the daemon status topic, also used for the LWT.
//
// Example: lumen/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllCommands returns a pattern matching every command topic.
//
// Pattern: lumen/command/#
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/#", TopicPrefix)
}

// AllTopics returns a pattern matching all Lumen topics.
// Use with caution, this receives all traffic.
//
// Pattern: lumen/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
