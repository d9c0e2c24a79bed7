package cli

import (
	"fmt"
	"strings"

	"github.com/qubitlabs/mediakeeper/internal/auth"
	"github.com/qubitlabs/mediakeeper/internal/models"
)

// premiumTag marks entries the current session cannot open.
func (a *App) premiumTag(item any) string {
	if !models.Premium(item) {
		return ""
	}
	if auth.CanAccess(item, a.session) {
		return " [premium]"
	}
	return " [premium - login required]"
}

func (a *App) listVideos() {
	videos := a.catalog.Videos()
	if len(videos) == 0 {
		fmt.Fprintln(a.out, "No videos")
		return
	}
	for _, v := range videos {
		fmt.Fprintf(a.out, "%s  %s (%s, %s)%s\n", v.ID, v.Title, v.Duration, v.ChannelName, a.premiumTag(v))
		if auth.CanAccess(v, a.session) {
			fmt.Fprintf(a.out, "    %s\n", v.VideoURL)
		}
	}
}

func (a *App) listDocuments() {
	documents := a.catalog.Documents()
	if len(documents) == 0 {
		fmt.Fprintln(a.out, "No tutorial documents")
		return
	}
	for _, d := range documents {
		fmt.Fprintf(a.out, "%s  %s (%s, %s, %s)%s\n", d.ID, d.Title, d.FileType, d.FileSize, d.Category, a.premiumTag(d))
		if auth.CanAccess(d, a.session) {
			fmt.Fprintf(a.out, "    %s\n", d.FileURL)
		}
	}
}

func (a *App) listPatents() {
	patents := a.catalog.Patents()
	if len(patents) == 0 {
		fmt.Fprintln(a.out, "No patents")
		return
	}
	for _, p := range patents {
		fmt.Fprintf(a.out, "%s  %s (%s, %s)%s\n", p.ID, p.Title, p.PatentNumber, p.Status, a.premiumTag(p))
		if auth.CanAccess(p, a.session) {
			fmt.Fprintf(a.out, "    %s: %s\n", strings.Join(p.Inventors, ", "), p.Abstract)
		}
	}
}

func (a *App) listUpdates() {
	updates := a.catalog.RecentUpdates()
	if len(updates) == 0 {
		fmt.Fprintln(a.out, "No recent updates")
		return
	}
	for _, u := range updates {
		fmt.Fprintf(a.out, "[%s] %s (%s)\n", u.Type, u.Title, u.Date)
		if u.Description != "" {
			fmt.Fprintf(a.out, "    %s\n", u.Description)
		}
	}
}
