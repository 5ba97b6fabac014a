package mqtt

import "fmt"

// TopicPrefix is the root of the bridge's topic namespace.
const TopicPrefix = "solar"

// Topics holds the session's topic namespace.
//
// All topics share one base, solar/<client-name>. The strings are
// computed once at construction and never change afterwards.
type Topics struct {
	base string
}

// NewTopics builds the topic namespace for a client name.
func NewTopics(clientName string) Topics {
	return Topics{base: fmt.Sprintf("%s/%s", TopicPrefix, clientName)}
}

// Base returns the namespace root, e.g. "solar/renogy-mqtt".
func (t Topics) Base() string {
	return t.base
}

// Status returns the status topic carrying the retained birth/will
// messages, e.g. "solar/renogy-mqtt/status".
func (t Topics) Status() string {
	return t.base + "/status"
}

// Data returns the telemetry topic, e.g. "solar/renogy-mqtt/data".
func (t Topics) Data() string {
	return t.base + "/data"
}
