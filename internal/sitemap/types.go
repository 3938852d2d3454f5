// Package sitemap builds sitemaps.org 0.9 documents from static routes and
// the paper store.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// ChangeFreq is the sitemaps.org <changefreq> vocabulary.
type ChangeFreq string

// Valid change frequencies.
const (
	FreqAlways  ChangeFreq = "always"
	FreqHourly  ChangeFreq = "hourly"
	FreqDaily   ChangeFreq = "daily"
	FreqWeekly  ChangeFreq = "weekly"
	FreqMonthly ChangeFreq = "monthly"
	FreqYearly  ChangeFreq = "yearly"
	FreqNever   ChangeFreq = "never"
)

// RouteEntry is one candidate <url> element. Path is relative to the site
// base URL and must be unique within a document after deduplication.
type RouteEntry struct {
	Path         string
	LastModified time.Time
	ChangeFreq   ChangeFreq
	Priority     float64
}

// Paper is the read-only projection of a stored paper record. Only approved
// papers are eligible for the sitemap.
type Paper struct {
	ID        string
	Status    string
	Subject   string
	Course    string
	College   string
	CreatedAt time.Time
}

// StatusApproved marks papers visible to the public site.
const StatusApproved = "approved"

// Approved reports whether the paper may appear in the sitemap.
func (p Paper) Approved() bool {
	return p.Status == StatusApproved
}

// Document is an ordered, de-duplicated sequence of route entries together
// with the base URL they resolve against.
type Document struct {
	BaseURL string
	Entries []RouteEntry
}

// urlSet is the XML wire shape of a sitemap document.
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

const xmlnsSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"

// XML serializes the document. Last-modified timestamps render as YYYY-MM-DD.
func (d Document) XML() ([]byte, error) {
	set := urlSet{Xmlns: xmlnsSitemap, URLs: make([]urlEntry, 0, len(d.Entries))}
	for _, e := range d.Entries {
		entry := urlEntry{
			Loc:        d.BaseURL + e.Path,
			ChangeFreq: string(e.ChangeFreq),
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
		if !e.LastModified.IsZero() {
			entry.LastMod = e.LastModified.Format("2006-01-02")
		}
		set.URLs = append(set.URLs, entry)
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal urlset: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
