package cli

import (
	"context"
	"fmt"

	"github.com/qubitlabs/mediakeeper/internal/models"
)

// edit updates one entry in place. Blank input keeps the current value.
func (a *App) edit(ctx context.Context) {
	if !a.requireAdmin() {
		return
	}

	kind, err := GetSimpleText(a.reader, "Entry type (video/tutorial/patent)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	id, err := GetSimpleText(a.reader, "Entry id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	switch kind {
	case "video":
		a.editVideo(ctx, id)
	case "tutorial", "document":
		a.editDocument(ctx, id)
	case "patent":
		a.editPatent(ctx, id)
	default:
		fmt.Fprintln(a.out, "Unknown entry type:", kind)
	}
}

func (a *App) editVideo(ctx context.Context, id string) {
	var current *models.Video
	for _, v := range a.catalog.Videos() {
		if v.ID == id {
			current = &v
			break
		}
	}
	if current == nil {
		fmt.Fprintln(a.out, "No video with id", id)
		return
	}

	v := *current
	var err error
	if v.Title, err = GetOptionalText(a.reader, "Title", v.Title, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if v.Description, err = GetOptionalText(a.reader, "Description", v.Description, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if v.VideoURL, err = GetOptionalText(a.reader, "Video URL", v.VideoURL, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if v.Duration, err = GetOptionalText(a.reader, "Duration", v.Duration, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.catalog.UpdateVideo(ctx, a.session, v); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return
	}
	fmt.Fprintln(a.out, "Video updated")
}

func (a *App) editDocument(ctx context.Context, id string) {
	var current *models.Document
	for _, d := range a.catalog.Documents() {
		if d.ID == id {
			current = &d
			break
		}
	}
	if current == nil {
		fmt.Fprintln(a.out, "No tutorial document with id", id)
		return
	}

	d := *current
	var err error
	if d.Title, err = GetOptionalText(a.reader, "Title", d.Title, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if d.Description, err = GetOptionalText(a.reader, "Description", d.Description, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if d.FileURL, err = GetOptionalText(a.reader, "File URL", d.FileURL, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if d.Category, err = GetOptionalText(a.reader, "Category", d.Category, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.catalog.UpdateDocument(ctx, a.session, d); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return
	}
	fmt.Fprintln(a.out, "Tutorial document updated")
}

func (a *App) editPatent(ctx context.Context, id string) {
	var current *models.Patent
	for _, p := range a.catalog.Patents() {
		if p.ID == id {
			current = &p
			break
		}
	}
	if current == nil {
		fmt.Fprintln(a.out, "No patent with id", id)
		return
	}

	p := *current
	var err error
	if p.Title, err = GetOptionalText(a.reader, "Title", p.Title, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if p.Abstract, err = GetOptionalText(a.reader, "Abstract", p.Abstract, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	status, err := GetOptionalText(a.reader, "Status (pending/granted/expired)", string(p.Status), a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	p.Status = models.PatentStatus(status)
	if p.PatentNumber, err = GetOptionalText(a.reader, "Patent number", p.PatentNumber, a.out); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.catalog.UpdatePatent(ctx, a.session, p); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return
	}
	fmt.Fprintln(a.out, "Patent updated")
}
