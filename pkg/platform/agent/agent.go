// Package agent reduces a raw User-Agent header to coarse client families
// suitable for logs and audit events.
package agent

import (
	"github.com/mssola/useragent"
)

// Summary is the coarse description of a client.
type Summary struct {
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile,omitempty"`
	Bot     bool   `json:"bot,omitempty"`
}

// Describe parses a User-Agent header. An empty header yields the zero Summary.
func Describe(raw string) Summary {
	if raw == "" {
		return Summary{}
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	return Summary{
		Browser: browser,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}
