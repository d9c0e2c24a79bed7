// Package feed derives the bounded "recent updates" list from the three
// catalogs. Entries carry both a human-readable relative label and the raw
// timestamp the label was derived from; ordering always uses the raw
// timestamp, never a re-parse of the label.
package feed

import (
	"fmt"
	"sort"
	"time"

	"github.com/qubitlabs/mediakeeper/internal/models"
)

// DefaultLimit bounds the feed when the caller passes limit <= 0.
const DefaultLimit = 3

// maxDescription caps the truncated description carried by feed entries.
const maxDescription = 100

// dateLayouts are tried in order when parsing catalog date fields.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// BuildRecentUpdates maps every catalog item to a feed entry, sorts the
// result from most to least recent and truncates it to limit. now anchors
// the relative labels so tests can pin time.
func BuildRecentUpdates(videos []models.Video, documents []models.Document, patents []models.Patent, limit int, now time.Time) []models.RecentUpdate {
	if limit <= 0 {
		limit = DefaultLimit
	}

	updates := make([]models.RecentUpdate, 0, len(videos)+len(documents)+len(patents))

	for _, v := range videos {
		updates = append(updates, entry(models.TypeVideo, v.ID, v.Title, v.Description, v.UploadedAt, now))
	}
	for _, d := range documents {
		updates = append(updates, entry(models.TypeDocument, d.ID, d.Title, d.Description, d.UploadedAt, now))
	}
	for _, p := range patents {
		// Published patents surface under their publication date.
		date := p.PublicationDate
		if date == "" {
			date = p.FilingDate
		}
		updates = append(updates, entry(models.TypePatent, p.ID, p.Title, p.Abstract, date, now))
	}

	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].SortKey > updates[j].SortKey
	})

	if len(updates) > limit {
		updates = updates[:limit]
	}
	return updates
}

func entry(typ models.ItemType, id, title, description, date string, now time.Time) models.RecentUpdate {
	label := date
	var sortKey int64
	if t, ok := parseDate(date); ok {
		label = RelativeLabel(t, now)
		sortKey = t.UnixMilli()
	}
	return models.RecentUpdate{
		ID:          fmt.Sprintf("%s-%s", typ, id),
		Type:        typ,
		Title:       title,
		Description: Truncate(description, maxDescription),
		Date:        label,
		SortKey:     sortKey,
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RelativeLabel renders t against now with fixed thresholds: under a day
// in minutes or hours, under a week in days, under a month in weeks, and
// months beyond that.
func RelativeLabel(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	switch {
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/(24*7)), "week")
	default:
		return plural(int(d.Hours()/(24*30)), "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
