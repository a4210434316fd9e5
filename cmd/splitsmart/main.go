// Command splitsmart prints the debt summary of every group in a snapshot
// file without a database.
//
//	splitsmart -file data.json [-mode debts|replay] [-check] [-save out.json]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/joho/godotenv"

	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/snapshot"
	"github.com/fkhayef/splitsmart/internal/user"
	"github.com/fkhayef/splitsmart/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logging.Setup(os.Getenv("LOG_LEVEL")).Error("splitsmart failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("splitsmart", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		file     = fs.String("file", "", "snapshot document to load")
		modeName = fs.String("mode", envOr("SNAPSHOT_LOAD_MODE", string(snapshot.ModeDebts)), "load mode: debts or replay")
		currency = fs.String("currency", envOr("CURRENCY_SYMBOL", "₹"), "currency symbol for summaries")
		check    = fs.Bool("check", false, "fail unless replaying expenses reproduces the stored debts")
		save     = fs.String("save", "", "write the document back with rebuilt debts")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" && fs.NArg() == 1 {
		*file = fs.Arg(0)
	}
	if *file == "" {
		return errors.New("a snapshot file is required (-file)")
	}

	mode, err := snapshot.ParseMode(*modeName)
	if err != nil {
		return err
	}

	doc, err := readDocument(*file)
	if err != nil {
		return err
	}

	names := make(map[string]string, len(doc.Users))
	for _, u := range doc.Users {
		names[user.NormalizeEmail(u.Email)] = u.Name
	}

	for i := range doc.Groups {
		g := &doc.Groups[i]

		l, err := snapshot.Rebuild(g, mode)
		if err != nil {
			return err
		}
		if *check {
			if err := converges(g); err != nil {
				return err
			}
		}

		fmt.Fprintf(stdout, "== %s ==\n", g.Name)
		for _, line := range l.Summarize(names, *currency) {
			fmt.Fprintln(stdout, line)
		}
		g.Debts = l.Debts()
	}

	if *save != "" {
		return writeDocument(*save, doc)
	}
	return nil
}

// converges checks that both load modes agree for g.
func converges(g *snapshot.Group) error {
	replayed, err := snapshot.Rebuild(g, snapshot.ModeReplay)
	if err != nil {
		return err
	}
	loaded, err := snapshot.Rebuild(g, snapshot.ModeDebts)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(replayed.Debts(), loaded.Debts()) {
		return fmt.Errorf("%w: group %q stored debts %v do not match replayed %v",
			ledger.ErrInconsistent, g.Name, loaded.Debts(), replayed.Debts())
	}
	return nil
}

func readDocument(path string) (*snapshot.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return snapshot.Decode(f)
}

func writeDocument(path string, doc *snapshot.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := doc.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
