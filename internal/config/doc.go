// Package config loads the site server's configuration.
//
// Settings come from three layers, later ones winning: built-in defaults,
// an optional openheavens.yaml, and OH_-prefixed environment variables
// where nested keys are joined by "_" (api.base becomes OH_API_BASE).
//
// # Configuration File Structure
//
//	server:
//	  addr: ":8080"
//	  dev: false
//	  pingInterval: 30s
//	  maxSessions: 0
//	  trustedProxies: ["10.0.0.0/8"]
//	  assetsDir: public
//	api:
//	  base: https://ohapi.weserve.one
//	  timeout: 10s
//	  cacheTTL: 10m
//	lang: pt
//	render:
//	  timeout: 15s
//	metrics:
//	  namespace: oh
//	tracing:
//	  tracerName: openheavens
//	export:
//	  dir: dist
//	  bucket: ""
//	  region: eu-west-1
//	  prefix: ""
//	log:
//	  format: text
//	  level: info
//
// Load validates the result; errors carry the C001, C002 and A001 codes
// of internal/errors.
package config
