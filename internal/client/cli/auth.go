package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopsage/internal/client/models"
	"github.com/dmitrijs2005/shopsage/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, password and display name and creates the
// account. On success the new user is signed in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Creating account...")
	s, err := a.sessions.Register(ctx, email, string(password), name)
	if errors.Is(err, common.ErrDuplicateAccount) {
		fmt.Fprintln(a.out, "An account with this email already exists")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", s.Name)
	return nil
}

// Login prompts for credentials and signs in. The demo account
// (demo@shopsage.ai / demo123) is always accepted.
func (a *App) Login(ctx context.Context) error {
	fmt.Fprintf(a.out, "Demo account: %s / %s\n", models.DemoEmail, models.DemoPassword)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fmt.Fprintln(a.out, "Signing in...")
	s, err := a.sessions.Login(ctx, email, string(password))
	if errors.Is(err, common.ErrInvalidCredentials) {
		fmt.Fprintln(a.out, "Invalid email or password")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome back, %s!\n", s.Name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	cur := a.sessions.Current()
	if cur == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (id %s)\n", cur.Name, cur.Email, cur.ID)
	return nil
}
