package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fitmacro/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register prompts for a user name and password and creates the account.
// The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can login now.")
	return nil
}

// Login prompts for credentials, authenticates and saves the session.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Login(ctx, userName, password); err != nil {
		return err
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout forgets the local session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	return nil
}
