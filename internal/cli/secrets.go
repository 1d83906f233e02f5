package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/passgen"
)

var errNotLoggedIn = errors.New("not logged in")

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return errNotLoggedIn
	}
	return nil
}

// Add stores or replaces a website/password pair.
func (a *App) Add(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	website, err := GetSimpleText(a.reader, "Enter website", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password (empty to generate)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	pw := string(password)
	if pw == "" {
		pw, err = a.keeper.GeneratePassword(passgen.DefaultLength)
		if err != nil {
			fmt.Fprintf(a.out, "Generation failed: %v\n", err)
			return err
		}
		fmt.Fprintf(a.out, "Generated password: %s\n", pw)
	}

	if err := a.keeper.UpsertSecret(ctx, a.sessionID, website, pw); err != nil {
		fmt.Fprintf(a.out, "Saving failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

// List prints the stored websites without decrypting anything.
func (a *App) List(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	entries, err := a.keeper.ListSecrets(ctx, a.sessionID)
	if err != nil {
		fmt.Fprintf(a.out, "Listing failed: %v\n", err)
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No secrets stored.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s\t(updated %s)\n", e.Website, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// Show decrypts and prints a single entry chosen by website.
func (a *App) Show(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	website, err := GetSimpleText(a.reader, "Enter website", a.out)
	if err != nil {
		return err
	}

	entries, err := a.keeper.ListSecrets(ctx, a.sessionID)
	if err != nil {
		fmt.Fprintf(a.out, "Lookup failed: %v\n", err)
		return err
	}
	for _, e := range entries {
		if e.Website != website {
			continue
		}
		pw, err := a.keeper.DecryptSecret(ctx, a.sessionID, e)
		if err != nil {
			fmt.Fprintf(a.out, "Decryption failed: %v\n", err)
			return err
		}
		fmt.Fprintf(a.out, "%s: %s\n", e.Website, pw)
		return nil
	}
	fmt.Fprintln(a.out, "No entry for that website.")
	return nil
}

// Delete removes one website entry.
func (a *App) Delete(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	website, err := GetSimpleText(a.reader, "Enter website", a.out)
	if err != nil {
		return err
	}

	removed, err := a.keeper.DeleteSecret(ctx, a.sessionID, website)
	if err != nil {
		fmt.Fprintf(a.out, "Deletion failed: %v\n", err)
		return err
	}
	if removed {
		fmt.Fprintln(a.out, "Deleted.")
	} else {
		fmt.Fprintln(a.out, "No entry for that website.")
	}
	return nil
}

// Generate prints a fresh random password. Available without a session.
func (a *App) Generate(ctx context.Context) error {
	pw, err := a.keeper.GeneratePassword(passgen.DefaultLength)
	if err != nil {
		fmt.Fprintf(a.out, "Generation failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, pw)
	return nil
}
