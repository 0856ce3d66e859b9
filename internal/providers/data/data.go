// Package data embeds the demo catalog served by the json catalog driver.
package data

import _ "embed"

//go:embed transports.json
var Transports []byte

//go:embed hotels.json
var Hotels []byte

//go:embed activities.json
var Activities []byte
