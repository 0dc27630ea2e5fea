// Package queue models the download-queue snapshot a media backend returns
// for one fetch.
//
// Items are read-only values: nothing here talks to the network or keeps
// state between fetches. Each triage cycle receives a fresh slice of Items in
// backend order and derives everything else (dedup keys, status text) from
// them.
//
// Keep backend wire types out of this package; the service clients map their
// JSON records onto these types so the triage engine never depends on a
// particular API version.
package queue
