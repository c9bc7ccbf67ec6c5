// Package mqtt wraps paho.mqtt.golang for the Lumen daemon.
//
// The daemon's MQTT surface is small: it subscribes to command topics
// (setpoint requests, override clears), publishes applied decisions and
// actuator diagnostics retained on state topics, and maintains a retained
// status message with a Last Will so subscribers can distinguish a crash
// from a graceful shutdown.
//
// Topic builders in Topics keep naming consistent:
//
//	lumen/command/setpoint        inbound setpoint requests
//	lumen/command/override/clear  inbound override release
//	lumen/state/decision          latest applied decision (retained)
//	lumen/state/diagnostics       actuator diagnostics (retained)
//	lumen/system/status           daemon status + LWT (retained)
//
// Subscriptions are tracked and restored automatically after a reconnect.
package mqtt
