package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
	"github.com/dmitrijs2005/cidadefoco/internal/common"
)

// Me fetches and prints the current account from the backend.
func (a *App) Me(ctx context.Context) error {
	u, err := a.session.CurrentUser(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(a.out, "Level: %s\n", models.LevelLabel(u.Level))
	if u.ProfileImage != "" {
		fmt.Fprintf(a.out, "Profile image: %s\n", u.ProfileImage)
	}
	return nil
}

// EditProfile interactively builds a partial profile update. Empty answers
// leave a field unchanged; the password is only touched when the user asks
// for it, and requires the current password.
func (a *App) EditProfile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "New name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "New email (empty to keep)", a.out)
	if err != nil {
		return err
	}

	upd := models.ProfileUpdate{Name: name, Email: email}

	change, err := getSimpleText(a.reader, "Change password? (y/n)", a.out)
	if err != nil {
		return err
	}
	if strings.ToLower(change) == "y" {
		current, err := getPassword("Current password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(current)

		newPw, err := getPassword("New password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(newPw)

		confirm, err := getPassword("Confirm new password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(confirm)

		upd.CurrentPassword = string(current)
		upd.NewPassword = string(newPw)
		upd.ConfirmPassword = string(confirm)
	}

	u, err := a.session.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Profile updated: %s <%s>\n", u.Name, u.Email)
	return nil
}

// Avatar uploads the image at the given path and points the profile picture
// at the uploaded asset.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: avatar <path>")
	}

	result, err := a.uploads.UploadImage(ctx, args[0])
	if err != nil {
		return err
	}

	u, err := a.session.UpdateProfileImage(ctx, result.URL)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Profile image updated: %s\n", u.ProfileImage)
	return nil
}
