// Package models defines the catalog data model shared by the sync engine,
// the derived feed builder and the admin console.
package models

// ItemType discriminates catalog entries in derived views.
type ItemType string

const (
	TypeVideo    ItemType = "video"
	TypeDocument ItemType = "document"
	TypePatent   ItemType = "patent"
)

// Video is a catalog entry for recorded material. Dates are stored as
// "YYYY-MM-DD" strings, matching the persisted wire format.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
	Duration     string `json:"duration"`
	UploadedAt   string `json:"uploadedAt"`
	ChannelName  string `json:"channelName"`
	IsPremium    bool   `json:"isPremium"`
}

// Document is a catalog entry for tutorial material.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FileType    string `json:"fileType"`
	FileURL     string `json:"fileUrl"`
	UploadedAt  string `json:"uploadedAt"`
	FileSize    string `json:"fileSize"`
	Category    string `json:"category"`
	IsPremium   bool   `json:"isPremium"`
}

// PatentStatus is the lifecycle state of a patent entry.
type PatentStatus string

const (
	PatentPending PatentStatus = "pending"
	PatentGranted PatentStatus = "granted"
	PatentExpired PatentStatus = "expired"
)

// Patent is a catalog entry for filed intellectual property.
type Patent struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Abstract        string       `json:"abstract"`
	Inventors       []string     `json:"inventors"`
	FilingDate      string       `json:"filingDate"`
	PublicationDate string       `json:"publicationDate"`
	PatentNumber    string       `json:"patentNumber"`
	Status          PatentStatus `json:"status"`
	IsPremium       bool         `json:"isPremium"`
}

// RecentUpdate is a derived feed entry. It is recomputed from the three
// catalogs on every change, never edited directly.
//
// Date carries the human-readable relative label ("2 hours ago"); SortKey
// carries the raw epoch milliseconds the label was derived from, so
// ordering never depends on re-parsing the label.
type RecentUpdate struct {
	ID          string   `json:"id"`
	Type        ItemType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	SortKey     int64    `json:"sortKey"`
}

// Premium reports whether the given item is gated behind a subscription.
// Items of unknown shape are treated as public.
func Premium(item any) bool {
	switch v := item.(type) {
	case Video:
		return v.IsPremium
	case *Video:
		return v.IsPremium
	case Document:
		return v.IsPremium
	case *Document:
		return v.IsPremium
	case Patent:
		return v.IsPremium
	case *Patent:
		return v.IsPremium
	default:
		return false
	}
}
