package clientdist

import _ "embed"

// ClientJS is the thin client served at "/client.js".
//
//go:embed openheavens.js
var ClientJS []byte

// ServiceWorkerJS is the PWA service worker served at "/sw.js".
//
//go:embed sw.js
var ServiceWorkerJS []byte

// Manifest is the web app manifest served at "/manifest.webmanifest".
//
//go:embed manifest.webmanifest
var Manifest []byte
