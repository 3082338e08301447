// Command cli exercises the marketplace the way the mobile screens do:
// register, login, browse the catalog, upload a note, buy one, and show the
// dashboard (own notes, purchases, balance).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"notebazaar/internal/client"
)

func main() {
	_ = godotenv.Load()

	base := flag.String("base", getenv("API_BASE_URL", "http://localhost:4000"), "API base URL")
	identifier := flag.String("user", "", "email or username to log in with")
	password := flag.String("password", "", "password")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	c := client.New(*base)

	cmd, rest := args[0], args[1:]
	if cmd != "register" && cmd != "notes" {
		if *identifier == "" || *password == "" {
			log.Fatal("-user and -password are required")
		}
		if _, err := c.Login(ctx, *identifier, *password); err != nil {
			log.Fatalf("login: %v", err)
		}
	}

	var err error
	switch cmd {
	case "register":
		err = register(ctx, c, rest)
	case "notes":
		err = listNotes(ctx, c, rest)
	case "upload":
		err = upload(ctx, c, rest)
	case "buy":
		err = buy(ctx, c, rest)
	case "dashboard":
		err = dashboard(ctx, c)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cli [-base URL] [-user ID -password PW] COMMAND

commands:
  register FULLNAME EMAIL USERNAME PASSWORD [PROGRAM]
  notes [SELLER]
  upload TITLE SUBJECT PRICE PDFFILE [DESCRIPTION]
  buy NOTE_ID
  dashboard`)
}

func register(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("register needs FULLNAME EMAIL USERNAME PASSWORD")
	}
	in := client.RegisterInput{FullName: args[0], Email: args[1], Username: args[2], Password: args[3]}
	if len(args) > 4 {
		in.Program = args[4]
	}
	u, err := c.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s (id=%d)\n", u.Username, u.ID)
	return nil
}

func listNotes(ctx context.Context, c *client.Client, args []string) error {
	seller := ""
	if len(args) > 0 {
		seller = args[0]
	}
	notes, err := c.Notes(ctx, seller)
	if err != nil {
		return err
	}
	for _, n := range notes {
		fmt.Printf("%4d  %-30s  %-12s  %4d  by %s\n", n.ID, n.Title, n.Subject, n.Price, n.Seller)
	}
	return nil
}

func upload(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("upload needs TITLE SUBJECT PRICE PDFFILE")
	}
	var price int
	if _, err := fmt.Sscanf(args[2], "%d", &price); err != nil {
		return fmt.Errorf("bad price %q", args[2])
	}
	f, err := os.Open(args[3])
	if err != nil {
		return err
	}
	defer f.Close()

	in := client.UploadInput{
		Title:    args[0],
		Subject:  args[1],
		Price:    price,
		Filename: args[3],
		PDF:      f,
	}
	if len(args) > 4 {
		in.Description = args[4]
	}
	note, err := c.UploadNote(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("listed note %d (%s)\n", note.ID, note.PDFPath)
	return nil
}

func buy(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("buy needs NOTE_ID")
	}
	var noteID int64
	if _, err := fmt.Sscanf(args[0], "%d", &noteID); err != nil {
		return fmt.Errorf("bad note id %q", args[0])
	}

	// Find the price, obtain a payment intent, then record the purchase.
	notes, err := c.Notes(ctx, "")
	if err != nil {
		return err
	}
	price := -1
	for _, n := range notes {
		if n.ID == noteID {
			price = n.Price
			break
		}
	}
	if price < 0 {
		return fmt.Errorf("note %d not in catalog", noteID)
	}

	intentID := ""
	if price > 0 {
		if _, err := c.CreatePaymentIntent(ctx, client.MinorUnits(price), "usd"); err != nil {
			return fmt.Errorf("payment intent: %w", err)
		}
		// Card confirmation happens on-device in the real app; the CLI just
		// records the purchase.
	}

	p, err := c.Purchase(ctx, noteID, intentID)
	if err != nil {
		return err
	}
	fmt.Printf("purchase %d recorded for note %d\n", p.ID, p.NoteID)
	return nil
}

func dashboard(ctx context.Context, c *client.Client) error {
	sess := c.Session()
	fmt.Printf("%s <%s>  balance=%d  sold=%d\n",
		sess.User.Username, sess.User.Email, sess.User.Balance, sess.User.Sold)

	own, err := c.Notes(ctx, sess.User.Username)
	if err != nil {
		return err
	}
	fmt.Printf("\nmy notes (%d):\n", len(own))
	for _, n := range own {
		fmt.Printf("  %4d  %-30s  %4d\n", n.ID, n.Title, n.Price)
	}

	bought, err := c.Purchases(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\npurchased (%d):\n", len(bought))
	for _, n := range bought {
		fmt.Printf("  %4d  %-30s  by %s\n", n.ID, n.Title, n.Seller)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
