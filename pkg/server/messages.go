package server

import (
	"github.com/renatoruis/oh-institutional/pkg/link"
	"github.com/renatoruis/oh-institutional/pkg/nav"
)

// Client message types.
const (
	MsgReady    = "ready"
	MsgClick    = "click"
	MsgNavigate = "navigate"
	MsgPopState = "popstate"
	MsgLang     = "lang"
)

// Server message types.
const (
	MsgReplace      = "replace"
	MsgPush         = "push"
	MsgReplaceState = "replaceState"
	MsgActive       = "active"
	MsgDrawer       = "drawer"
	MsgScroll       = "scroll"
	MsgTitle        = "title"
	MsgRoute        = "route"
	MsgLoad         = "load"
)

// Inbound is a message from the thin client.
type Inbound struct {
	Type string `json:"type"`

	// Path is the location for ready, navigate and popstate.
	Path string `json:"path,omitempty"`

	// Lang is the requested language for ready and lang.
	Lang string `json:"lang,omitempty"`

	// Click describes the anchor for click.
	Click *link.Click `json:"click,omitempty"`
}

// Outbound is a message to the thin client.
type Outbound struct {
	Type string `json:"type"`

	// HTML is the new content for replace.
	HTML string `json:"html,omitempty"`

	// Path is the location for push, replaceState, route and load.
	Path string `json:"path,omitempty"`

	// State is the history entry payload for push and replaceState.
	State *nav.State `json:"state,omitempty"`

	// Value carries the tag, title or language of chrome messages.
	Value string `json:"value,omitempty"`

	// View, Params and Active describe a route message. Active is the
	// highlighted navigation entry, empty when the view has none.
	View   string            `json:"view,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Active string            `json:"active,omitempty"`
}
