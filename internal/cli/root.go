package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	s := a.session.Username
	if a.session.IsAdmin() {
		s += " admin"
	}
	return fmt.Sprintf("(%s)", s)
}

// Root is the REPL: read a command, dispatch, repeat until exit or EOF.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to mediakeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "mk %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			a.help()
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "whoami":
			a.whoami()
		case "videos":
			a.listVideos()
		case "tutorials", "documents":
			a.listDocuments()
		case "patents":
			a.listPatents()
		case "updates":
			a.listUpdates()
		case "addvideo":
			a.addVideo(ctx)
		case "addtutorial", "adddocument":
			a.addDocument(ctx)
		case "addpatent":
			a.addPatent(ctx)
		case "edit":
			a.edit(ctx)
		case "delete":
			a.delete(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Available commands: videos, tutorials, patents, updates, whoami, help, exit")
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Sign in for premium content: login")
		return
	}
	fmt.Fprintln(a.out, "Session commands: logout")
	if a.isAdmin() {
		fmt.Fprintln(a.out, "Admin commands: addvideo, addtutorial, addpatent, edit, delete")
	}
}
