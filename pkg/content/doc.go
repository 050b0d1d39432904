// Package content is the client for the church's content API.
//
// Every fetch follows the original site's contract: a failed request
// yields nil data rather than an error, and views render their empty
// states from that. Successful GET responses are cached so a later
// network failure can still be served from the last good copy.
//
// Rich text coming from the CMS must pass through Sanitize before it is
// emitted as template.HTML.
package content
