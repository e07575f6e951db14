// Package mqtt provides MQTT client connectivity for the beamer bridge.
//
// This package manages:
//   - Single-attempt connections with a registered last will
//   - Message publishing with QoS validation
//   - Topic subscriptions with panic-safe handlers
//   - Topic naming for the status and command topics
//
// # Reconnection
//
// paho's automatic reconnect is disabled. The bus session owns the retry
// schedule and calls Connect again once its fixed interval has passed.
// Subscriptions are not tracked here; the session subscribes again after
// every successful Connect.
//
// # Topics
//
//	{prefix}/{hostname}/status  retained status, also the will topic
//	{prefix}/{hostname}/cmd     commands for this bridge
//	{prefix}cmd                 commands for every bridge on the prefix
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT)
//	err := client.Connect(mqtt.ConnectOptions{
//	    ClientID: "beamercontrol-aula",
//	    Will:     &mqtt.Will{Topic: topics.Status(), Payload: []byte(`{"state":"disconnected"}`), Retained: true},
//	})
//	if err != nil {
//	    // try again later
//	}
//	defer client.Close()
//
//	client.Subscribe(topics.DeviceCommand(), 0, handler)
//	client.PublishRetained(topics.Status(), payload)
package mqtt
