package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// Register prompts for a new identity and creates it. The user is not
// logged in afterwards; login stays an explicit step.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.keeper.Register(ctx, username, email, string(password)); err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Registered. You can now log in.")
	return nil
}

// Login prompts for credentials and opens a session. Every denial prints
// the same generic message.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sessionID, err := a.keeper.Login(ctx, username, string(password))
	if err != nil {
		fmt.Fprintln(a.out, "Login failed.")
		return err
	}

	a.sessionID = sessionID
	a.userName = username
	fmt.Fprintln(a.out, "Login successful.")
	return nil
}

// Logout ends the current session.
func (a *App) Logout(ctx context.Context) error {
	if a.sessionID != "" {
		a.keeper.Logout(ctx, a.sessionID)
	}
	a.sessionID = ""
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// RequestReset issues a reset token. The same message is printed whether or
// not the username exists, so the prompt cannot be used as an oracle.
func (a *App) RequestReset(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	token, err := a.keeper.IssueResetToken(ctx, username)
	if err != nil {
		fmt.Fprintln(a.out, "If the account exists, a reset token has been issued.")
		return nil
	}

	// Token delivery is outside the engine; a local CLI just prints it.
	fmt.Fprintln(a.out, "If the account exists, a reset token has been issued.")
	fmt.Fprintf(a.out, "Reset token: %s\n", token)
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (a *App) ResetPassword(ctx context.Context) error {
	token, err := GetSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.keeper.ResetPassword(ctx, token, string(password)); err != nil {
		fmt.Fprintf(a.out, "Password reset failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Password updated.")
	return nil
}
