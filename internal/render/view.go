package render

import (
	"html/template"
	"ruesite/internal/domain/config"
	"time"
)

type ControlOption struct {
	Value    string `json:"value"`
	Text     string `json:"text"`
	Selected bool   `json:"selected,omitempty"`
}

// Control is one filter select. The first option is always the wildcard.
type Control struct {
	Name    string          `json:"name"`
	Options []ControlOption `json:"options"`
}

type ListingPage struct {
	Site     config.SiteConfig
	Controls []Control
	Cards    []Card
	// Error replaces the whole list when the data could not be loaded.
	Error string
	Dev   bool
	// Static pages navigate between pre-rendered place pages instead of
	// submitting the filter form.
	Static    bool
	Generated time.Time
	PageTitle string
}

type PlacePage struct {
	Site      config.SiteConfig
	Name      string
	LinkParam string
	Cards     []Card
	Error     string
	BackHref  string
	PageTitle string
}

type ArticlePage struct {
	Site      config.SiteConfig
	File      string
	HTML      template.HTML
	TOC       []Heading
	BackHref  string
	PageTitle string
}

type NotFoundPage struct {
	Site config.SiteConfig
	Path string
}

type Heading struct {
	Level int
	ID    string
	Text  string
}
