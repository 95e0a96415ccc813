package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
	"github.com/dmitrijs2005/cidadefoco/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the new account's details and creates it via the user
// service. The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user := models.NewUser{
		Name:     name,
		Email:    email,
		Password: string(password),
		Level:    models.LevelCommon,
	}
	if _, err := a.users.Create(ctx, user); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created, you can now log in.")
	return nil
}

// Login prompts for credentials and authenticates through the session
// manager. Empty input is submitted as-is; the backend judges it.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", resp.User.Name)
	return nil
}

// Logout drops the session. Safe to call when not logged in.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// parseID converts the first argument of a command into a numeric id.
func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing id argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
