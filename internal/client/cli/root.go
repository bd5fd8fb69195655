package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

// Run starts the interactive loop. It exits on EOF or "exit"/"quit".
func (a *App) Run(ctx context.Context) {
	fmt.Println("Welcome to TaskDeck CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("td %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: (l)ist [page], add, show, toggle <id>, delete <id>, attach, download <id>, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, exit")
			}

		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "add":
			a.Add(ctx)
		case "l", "list":
			a.List(ctx, args)
		case "show":
			a.Show(ctx)
		case "toggle":
			a.Toggle(ctx, args)
		case "delete":
			a.Delete(ctx, args)
		case "attach":
			a.AttachFile(ctx)
		case "download":
			a.DownloadAttachments(ctx, args)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
