package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/qubitlabs/mediakeeper/internal/common"
)

func (a *App) Login(ctx context.Context) {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	token, err := a.auth.Login(ctx, userName, password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Invalid username or password")
		} else {
			fmt.Fprintf(a.out, "Login failed: %v\n", err)
		}
		return
	}

	session, err := a.auth.ParseToken(token)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return
	}

	a.session = session
	fmt.Fprintf(a.out, "Logged in as %s\n", session.Username)
}

func (a *App) Logout(_ context.Context) {
	if a.session == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return
	}
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) whoami() {
	if a.session == nil {
		fmt.Fprintln(a.out, "guest (free content only)")
		return
	}
	access := "free"
	if a.session.Premium {
		access = "premium"
	}
	fmt.Fprintf(a.out, "%s, role %s, %s access\n", a.session.Username, a.session.Role, access)
}
