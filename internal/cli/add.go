package cli

import (
	"context"
	"fmt"

	"github.com/qubitlabs/mediakeeper/internal/models"
)

// requireAdmin prints a uniform message for non-admin sessions.
func (a *App) requireAdmin() bool {
	if a.isAdmin() {
		return true
	}
	fmt.Fprintln(a.out, "Admin login required")
	return false
}

func (a *App) addVideo(ctx context.Context) {
	if !a.requireAdmin() {
		return
	}

	var v models.Video
	var err error
	if v.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if v.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if v.VideoURL, err = GetSimpleText(a.reader, "Video URL", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if v.Duration, err = GetSimpleText(a.reader, "Duration (mm:ss)", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if v.ChannelName, err = GetSimpleText(a.reader, "Channel name", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	v.IsPremium = a.askPremium()

	if err := a.catalog.AddVideo(ctx, a.session, v); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return
	}
	fmt.Fprintln(a.out, "Video added")
}

func (a *App) addDocument(ctx context.Context) {
	if !a.requireAdmin() {
		return
	}

	var d models.Document
	var err error
	if d.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if d.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if d.FileType, err = GetSimpleText(a.reader, "File type (pdf/ppt/zip)", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if d.FileURL, err = GetSimpleText(a.reader, "File URL", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if d.FileSize, err = GetSimpleText(a.reader, "File size (e.g. 2.4 MB)", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if d.Category, err = GetSimpleText(a.reader, "Category", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	d.IsPremium = a.askPremium()

	if err := a.catalog.AddDocument(ctx, a.session, d); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return
	}
	fmt.Fprintln(a.out, "Tutorial document added")
}

func (a *App) addPatent(ctx context.Context) {
	if !a.requireAdmin() {
		return
	}

	var p models.Patent
	var err error
	if p.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if p.Abstract, err = GetMultiline(a.reader, "Abstract", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	inventors, err := GetSimpleText(a.reader, "Inventors (comma-separated)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	p.Inventors = SplitList(inventors)
	if p.PatentNumber, err = GetSimpleText(a.reader, "Patent number", a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	status, err := GetOptionalText(a.reader, "Status (pending/granted/expired)", string(models.PatentPending), a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	p.Status = models.PatentStatus(status)
	p.IsPremium = a.askPremium()

	if err := a.catalog.AddPatent(ctx, a.session, p); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return
	}
	fmt.Fprintln(a.out, "Patent added")
}

func (a *App) askPremium() bool {
	answer, err := GetOptionalText(a.reader, "Premium? (y/n)", "n", a.out)
	if err != nil {
		return false
	}
	return answer == "y" || answer == "yes"
}
