// Command scrubarr keeps Sonarr download queues clean.
//
// `scrubarr run` starts the periodic triage loop; `scrubarr queue` previews
// what the next cycle would do; `scrubarr ping` checks connectivity; the
// config subcommands create, validate and print configuration.
package main
