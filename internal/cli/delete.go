package cli

import (
	"context"
	"fmt"
)

func (a *App) delete(ctx context.Context) {
	if !a.requireAdmin() {
		return
	}

	kind, err := GetSimpleText(a.reader, "Entry type (video/tutorial/patent)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	id, err := GetSimpleText(a.reader, "Entry id to delete", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	switch kind {
	case "video":
		err = a.catalog.DeleteVideo(ctx, a.session, id)
	case "tutorial", "document":
		err = a.catalog.DeleteDocument(ctx, a.session, id)
	case "patent":
		err = a.catalog.DeletePatent(ctx, a.session, id)
	default:
		fmt.Fprintln(a.out, "Unknown entry type:", kind)
		return
	}

	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
		return
	}
	fmt.Fprintln(a.out, "Deleted")
}
