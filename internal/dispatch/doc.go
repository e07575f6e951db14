// Package dispatch routes power requests from every input source to the
// protocol adapter.
//
// Sources and what they publish afterwards:
//
//	web     SetPower only
//	bus     SetPower and/or SetBlank; a "status" key publishes trigger "cmd"
//	button  toggle from the reconciled state, always publishes trigger "button"
//
// A long button hold is passed to the host through OnFactoryReset.
//
// Inbound bus payloads are JSON objects:
//
//	{"poweron": true}
//	{"pwrstate": "off", "status": 1}
//	{"status": null}
package dispatch
