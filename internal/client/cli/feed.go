package cli

import (
	"context"
	"fmt"
)

// Feed fetches and prints the whole feed. The list is replaced wholesale on
// every call; nothing is cached between invocations.
func (a *App) Feed(ctx context.Context) error {
	pubs, err := a.pubs.List(ctx)
	if err != nil {
		return err
	}

	if len(pubs) == 0 {
		fmt.Fprintln(a.out, "No publications yet.")
		return nil
	}

	for _, p := range pubs {
		fmt.Fprintf(a.out, "#%d  %s\n", p.ID, p.Description)
		fmt.Fprintf(a.out, "    by %s on %s — %d like(s)\n",
			p.Author.Name, p.CreatedAt.Format("2006-01-02 15:04"), p.Likes)
		if p.ImageURL != "" {
			fmt.Fprintf(a.out, "    %s\n", p.ImageURL)
		}
	}
	return nil
}

// Post prompts for a photo and a description and creates a publication.
func (a *App) Post(ctx context.Context) error {
	photo, err := getSimpleText(a.reader, "Path to photo", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}

	pub, err := a.pubs.Create(ctx, photo, description)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Published #%d.\n", pub.ID)
	return nil
}

// Like marks a publication as liked, then refetches the feed to show the
// confirmed count; there is no optimistic local update.
func (a *App) Like(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.pubs.Like(ctx, id); err != nil {
		return err
	}
	return a.printLikes(ctx, id)
}

// Unlike removes a like, then refetches the feed.
func (a *App) Unlike(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.pubs.Unlike(ctx, id); err != nil {
		return err
	}
	return a.printLikes(ctx, id)
}

func (a *App) printLikes(ctx context.Context, id int64) error {
	pubs, err := a.pubs.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range pubs {
		if p.ID == id {
			fmt.Fprintf(a.out, "#%d now has %d like(s).\n", p.ID, p.Likes)
			return nil
		}
	}
	fmt.Fprintf(a.out, "#%d is no longer in the feed.\n", id)
	return nil
}
