package cli

import (
	"context"
	"fmt"
)

// Report prompts for a photo and a description and submits a problem report.
func (a *App) Report(ctx context.Context) error {
	photo, err := getSimpleText(a.reader, "Path to photo", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Describe the problem", a.out)
	if err != nil {
		return err
	}

	if err := a.problems.Report(ctx, photo, description); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Problem reported, thank you.")
	return nil
}
