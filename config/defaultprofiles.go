package config

// -----------------------------------------------------------------------------
// Embedded profiles
//
// Populate embeddedProfiles at build time (e.g. via code generation) or
// manually during development.
// Key: board name passed to Load
// Val: raw JSON bytes for that board
// -----------------------------------------------------------------------------

const profilePico = `{
  "uart": {
      "baud_rate": 115200,
      "tx_pin": 0,
      "rx_pin": 1
  },
  "heartbeat": {
      "interval": 2
  },
  "log": {
      "min_level": "debug"
  }
}`

const profilePico2 = `{
  "uart": {
      "baud_rate": 115200,
      "tx_pin": 0,
      "rx_pin": 1
  },
  "heartbeat": {
      "interval": 2
  },
  "log": {
      "min_level": "info"
  }
}`

const profileHost = `{
  "heartbeat": {
      "interval": 0
  },
  "log": {
      "min_level": "debug"
  }
}`

var embeddedProfiles = map[string][]byte{
	"pico":  []byte(profilePico),
	"pico2": []byte(profilePico2),
	"host":  []byte(profileHost),
}
