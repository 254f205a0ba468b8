package repl

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"invoice-manager/internal/app"
	"invoice-manager/internal/core"
)

// Run starts the interactive REPL loop. It reads slash commands from reader
// and dispatches them against the application service until /exit.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	fmt.Println("Invoice Manager")
	fmt.Println("Manage quotations and invoices. Type /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	actor := promptActor(reader)
	fmt.Printf("Acting as %s. Use /actor to switch, /elevate to toggle privileges.\n", actor.Name)

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "quotations", "q":
			return listDocuments(ctx, svc, core.Quotation, args)

		case "invoices", "i":
			return listDocuments(ctx, svc, core.Invoice, args)

		case "show", "s":
			if len(args) < 1 {
				fmt.Println("Usage: /show <id|reference>")
				return nil
			}
			result, err := svc.GetDocument(ctx, args[0])
			if err != nil {
				return err
			}
			printDocumentDetail(result.Document)
			printHistory(result.History)

		case "new", "n":
			if len(args) < 1 || !core.DocumentType(args[0]).Valid() {
				fmt.Println("Usage: /new quotation|invoice")
				return nil
			}
			handleNewDocument(ctx, reader, svc, core.DocumentType(args[0]), actor)

		case "submit":
			return runTransition(args, "/submit <id|reference>", func(ref string) (*app.DocumentResult, error) {
				return svc.Submit(ctx, ref, actor)
			})

		case "approve":
			return runTransition(args, "/approve <id|reference>", func(ref string) (*app.DocumentResult, error) {
				return svc.Approve(ctx, ref, actor)
			})

		case "reject":
			return runTransition(args, "/reject <id|reference>", func(ref string) (*app.DocumentResult, error) {
				return svc.Reject(ctx, ref, actor)
			})

		case "pay":
			return runTransition(args, "/pay <id|reference>", func(ref string) (*app.DocumentResult, error) {
				return svc.MarkPaid(ctx, ref, actor)
			})

		case "cancel":
			return runTransition(args, "/cancel <id|reference>", func(ref string) (*app.DocumentResult, error) {
				return svc.Cancel(ctx, ref, actor)
			})

		case "status":
			if len(args) < 2 {
				fmt.Println("Usage: /status <id|reference> <target-status>")
				return nil
			}
			result, err := svc.SetStatus(ctx, args[0], core.DocumentStatus(args[1]), actor)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s.\n", result.Document.Reference, result.Document.Status)

		case "convert":
			if len(args) < 1 {
				fmt.Println("Usage: /convert <quotation id|reference>")
				return nil
			}
			result, err := svc.ConvertToInvoice(ctx, args[0], actor)
			if err != nil {
				return err
			}
			fmt.Printf("Quotation converted. New invoice: %s\n", result.Document.Reference)
			printDocumentDetail(result.Document)

		case "delete":
			if len(args) < 1 {
				fmt.Println("Usage: /delete <id|reference>")
				return nil
			}
			if err := svc.DeleteDocument(ctx, args[0], actor); err != nil {
				return err
			}
			fmt.Printf("Deleted %s.\n", args[0])

		case "actor":
			if len(args) > 0 {
				actor.Name = args[0]
			} else {
				actor = promptActor(reader)
			}
			fmt.Printf("Acting as %s.\n", actor.Name)

		case "elevate":
			actor.Elevated = !actor.Elevated
			if actor.Elevated {
				fmt.Println("Elevated privileges ON.")
			} else {
				fmt.Println("Elevated privileges OFF.")
			}

		case "help", "h":
			printHelp()

		case "exit", "quit", "e":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !strings.HasPrefix(input, "/") {
			fmt.Println("Commands start with a slash — type /help.")
			continue
		}

		if err := dispatchSlash(input); err != nil {
			if err == errExit {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func promptActor(reader *bufio.Reader) core.Actor {
	for {
		fmt.Print("Your name: ")
		name, _ := reader.ReadString('\n')
		name = strings.TrimSpace(name)
		if name != "" {
			return core.Actor{Name: name}
		}
	}
}

func listDocuments(ctx context.Context, svc app.ApplicationService, docType core.DocumentType, args []string) error {
	var status *core.DocumentStatus
	if len(args) > 0 {
		s := core.DocumentStatus(strings.ToLower(args[0]))
		if !s.Valid() {
			fmt.Printf("Unknown status %q.\n", args[0])
			return nil
		}
		status = &s
	}
	result, err := svc.ListDocuments(ctx, docType, status)
	if err != nil {
		return err
	}
	printDocumentList(result)
	return nil
}

func runTransition(args []string, usage string, op func(ref string) (*app.DocumentResult, error)) error {
	if len(args) < 1 {
		fmt.Println("Usage: " + usage)
		return nil
	}
	result, err := op(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s.\n", result.Document.Reference, result.Document.Status)
	return nil
}

func printHelp() {
	fmt.Println(`
Documents
  /quotations [status]          List quotations, optionally by status
  /invoices [status]            List invoices, optionally by status
  /show <id|ref>                Show one document with items and history
  /new quotation|invoice        Create a document interactively
  /delete <id|ref>              Delete a draft document

Lifecycle
  /submit <id|ref>              Draft -> pending
  /approve <id|ref>             Approve (elevated)
  /reject <id|ref>              Reject
  /pay <id|ref>                 Approved -> paid (elevated)
  /cancel <id|ref>              Cancel any non-terminal document
  /status <id|ref> <status>     Set an explicit status
  /convert <id|ref>             Turn a quotation into a draft invoice

Session
  /actor [name]                 Switch the acting user
  /elevate                      Toggle elevated privileges
  /help                         This help
  /exit                         Leave`)
}
