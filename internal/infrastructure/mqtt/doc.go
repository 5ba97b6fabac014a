// Package mqtt manages the bridge's publish session with the broker.
//
// This package owns:
//   - Connection lifecycle (Disconnected -> Connecting -> Connected)
//   - Last Will and Testament registration before every connect
//   - Birth message publication on broker acknowledgment
//   - Topic namespace (solar/<client>/status, solar/<client>/data)
//   - QoS/retain policy per message kind
//
// # Status protocol
//
// Observers of the status topic always see an accurate online/offline
// state. The offline status message is registered as the last will
// before the network connect, so the broker publishes it on any abrupt
// termination (crash, kill, lost network). A clean Disconnect publishes
// the same offline status explicitly instead. The birth (online)
// message is published on every connection acknowledgment, including
// reconnects. Status messages are always QoS 1 and retained.
//
// # Data policy
//
// Telemetry is a rate sample: data messages use the configured QoS,
// are never retained, and are never queued while disconnected; a tick
// during a disconnected window is simply lost.
//
// # Usage
//
//	session := mqtt.NewSession(cfg.MQTT, statusSource)
//	session.SetLogger(log.With("component", "mqtt"))
//	if err := session.Connect(); err != nil {
//	    return err
//	}
//	defer session.Disconnect()
//
//	err := session.PublishData(payload)
package mqtt
