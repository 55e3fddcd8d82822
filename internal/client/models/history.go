package models

import "fmt"

// ResultSnapshot is the part of a search result kept in history.
type ResultSnapshot struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Store    string `json:"store"`
	URL      string `json:"url"`
	Verified bool   `json:"verified"`
}

// HistoryRecord is one search submission. UserID is set at creation and
// never changes.
type HistoryRecord struct {
	ID        string           `json:"id"`
	Query     string           `json:"query"`
	Timestamp string           `json:"timestamp"`
	Results   []ResultSnapshot `json:"results"`
	UserID    string           `json:"userId"`
}

func (r HistoryRecord) String() string {
	return fmt.Sprintf("%s  %-20q  %s  (%d results)", r.ID, r.Query, r.Timestamp, len(r.Results))
}

func (r ResultSnapshot) String() string {
	v := ""
	if r.Verified {
		v = " [verified]"
	}
	return fmt.Sprintf("%s - %s at %s%s %s", r.Name, r.Price, r.Store, v, r.URL)
}
