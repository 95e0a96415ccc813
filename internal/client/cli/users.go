package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
)

// Users prints the admin-only account listing. The privilege check is the
// backend's; non-admin callers see its error message.
func (a *App) Users(ctx context.Context) error {
	users, err := a.users.List(ctx)
	if err != nil {
		return err
	}

	for _, u := range users {
		fmt.Fprintf(a.out, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, models.LevelLabel(u.Level))
	}
	return nil
}
