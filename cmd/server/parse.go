package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"confirm.durgadawaghar.com/internal/intake"
	"confirm.durgadawaghar.com/internal/parser"
)

var batch bool

var errNoConfirmation = errors.New("no confirmation found")

func init() {
	parseCmd.Flags().BoolVar(&batch, "batch", false, "Treat input as several messages separated by --- or === lines")
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a message from a file or stdin",
	Long: `Parse a confirmation message and print a JSON report. Nothing is
recorded. Exits with status 1 when no confirmation is found.

Examples:
  # Parse a file
  server parse message.txt

  # Parse from stdin
  pbpaste | server parse -

  # Parse an export of several messages
  server parse --batch export.txt`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runParse,
	SilenceErrors: true,
}

type fieldReport struct {
	Field   string `json:"field"`
	Status  string `json:"status"`
	Pattern string `json:"pattern,omitempty"`
	Matches int    `json:"matches"`
}

type report struct {
	Found    bool          `json:"found"`
	Password string        `json:"password,omitempty"`
	Account  string        `json:"account,omitempty"`
	Amount   string        `json:"amount,omitempty"`
	Fields   []fieldReport `json:"fields"`
}

func runParse(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	text, err := intake.NormalizeText(string(data))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var reports []parser.Report
	if batch {
		reports = parser.ParseBatch(text)
	} else {
		reports = []parser.Report{parser.Inspect(text)}
	}

	out := make([]report, len(reports))
	found := false
	for i, r := range reports {
		out[i] = toReport(r)
		found = found || r.OK()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if batch {
		err = enc.Encode(out)
	} else {
		err = enc.Encode(out[0])
	}
	if err != nil {
		return err
	}

	if !found {
		return errNoConfirmation
	}
	return nil
}

func toReport(r parser.Report) report {
	rep := report{Found: r.OK()}
	if c := r.Confirmation; c != nil {
		rep.Password = c.Password
		rep.Account = c.Account
		rep.Amount = c.Amount.String()
	}
	for _, d := range r.Fields {
		rep.Fields = append(rep.Fields, fieldReport{
			Field:   string(d.Field),
			Status:  string(d.Status),
			Pattern: d.Pattern,
			Matches: d.Matches,
		})
	}
	return rep
}
