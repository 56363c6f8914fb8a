package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

const helpText = `Available commands:
  open <listing>    load a listing
  add <path>...     upload image files
  ls                show the gallery
  rm <i>            remove image i
  mv <from> <to>    move image
  save [-f]         save; -f drops local-only images
  status            show listing and connectivity
  exit`

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	Open(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Remove(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Status(ctx context.Context) error
}

// runREPL reads commands line by line until EOF, "exit" or "quit".
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "open":
			err = a.Open(ctx, args)
		case "add":
			err = a.Add(ctx, args)
		case "ls", "list":
			err = a.List(ctx)
		case "rm":
			err = a.Remove(ctx, args)
		case "mv":
			err = a.Move(ctx, args)
		case "save":
			err = a.Save(ctx, args)
		case "status":
			err = a.Status(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
