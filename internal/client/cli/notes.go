package cli

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dustin/go-humanize"
)

var getMultiline = GetMultiline

func (a *App) List(ctx context.Context) error {
	notes, err := a.api.ListNotes(ctx)
	if err != nil {
		return a.fail(ctx, "Failed to load notes.", err)
	}

	if len(notes) == 0 {
		a.println("No notes yet. Use 'create' to add one.")
		return nil
	}

	for i := range notes {
		a.printOverview(&notes[i])
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	n, err := a.api.GetNote(ctx, id)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			a.println("Note not found.")
			return err
		}
		return a.fail(ctx, "Failed to load note.", err)
	}
	a.printNote(n)
	return nil
}

func (a *App) Create(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}

	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		a.println("Title and content are required.")
		return nil
	}

	a.println("Saving and summarizing...")
	n, err := a.api.CreateNote(ctx, title, content)
	if err != nil {
		return a.fail(ctx, "Failed to create note.", err)
	}
	a.printNote(n)
	return nil
}

func (a *App) Summarize(ctx context.Context, id string) error {
	n, err := a.api.SummarizeNote(ctx, id)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			a.println("Note not found.")
			return err
		}
		return a.fail(ctx, "Failed to summarize note.", err)
	}
	a.println("Summary: " + n.SummaryText())
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if _, err := a.api.DeleteNote(ctx, id); err != nil {
		return a.fail(ctx, "Failed to delete note.", err)
	}
	a.println("Note deleted.")
	return nil
}

func (a *App) printOverview(n *models.Note) {
	a.printf("%s  %s  (%s)\n", n.ID, n.Title, humanize.Time(n.CreatedAt))
	if s := n.SummaryText(); s != "" {
		a.printf("    %s\n", firstLine(s))
	}
}

func (a *App) printNote(n *models.Note) {
	a.printf("%s\n%s\ncreated %s\n\n%s\n", n.Title, n.ID, humanize.Time(n.CreatedAt), n.Content)
	if s := n.SummaryText(); s != "" {
		a.printf("\nSummary: %s\n", s)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
