// Package sonarr is a small client for the Sonarr v3 REST API covering the
// calls queue triage needs: read the completed queue, trigger a series
// refresh, bulk-remove queue items, and read system status.
package sonarr
