package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yafera/herdbook/internal/domain/models"
	"github.com/yafera/herdbook/internal/service/reporting"
	"github.com/yafera/herdbook/internal/store"
)

const dateLayout = "2006-01-02"

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(animalsCmd)
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(sellCmd)
	rootCmd.AddCommand(expenseCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(historyCmd)

	animalsCmd.Flags().String("status", "", "Only list present or sold animals")
	buyCmd.Flags().String("date", "", "Purchase date (YYYY-MM-DD, default today)")
	buyCmd.Flags().StringP("description", "d", "", "Breed, color or other description")
	sellCmd.Flags().String("date", "", "Sale date (YYYY-MM-DD, default today)")
	expenseCmd.Flags().String("date", "", "Expense date (YYYY-MM-DD, default today)")
	expenseCmd.Flags().StringP("note", "n", "", "Free text note")
	historyCmd.Flags().Int64("limit", 10, "Number of snapshots to show")
}

// ─── projects ───────────────────────────────────────────────────────────────

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects found in the worksheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects := current.store.Projects(cmd.Context())
		out := cmd.OutOrStdout()
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects yet.")
			return nil
		}
		for _, p := range projects {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}

// ─── animals ────────────────────────────────────────────────────────────────

var animalsCmd = &cobra.Command{
	Use:   "animals PROJECT",
	Short: "List the animals of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnimals,
}

func runAnimals(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")

	var animals []models.Animal
	switch status {
	case "":
		animals = current.store.ProjectAnimals(cmd.Context(), args[0])
	case "present":
		animals = current.store.PresentAnimals(cmd.Context(), args[0])
	case "sold":
		for _, a := range current.store.ProjectAnimals(cmd.Context(), args[0]) {
			if a.IsSold() {
				animals = append(animals, a)
			}
		}
	default:
		return fmt.Errorf("--status must be present or sold, got %q", status)
	}

	out := cmd.OutOrStdout()
	if len(animals) == 0 {
		fmt.Fprintf(out, "No animals in %s.\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tBOUGHT\tPRICE\tSOLD\tSALE PRICE\tPROFIT")
	for _, a := range animals {
		sold := "-"
		if a.SaleDate != nil {
			sold = a.SaleDate.Format(dateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Name, a.Status, a.PurchaseDate.Format(dateLayout),
			reporting.FormatAmount(a.PurchasePrice), sold,
			reporting.FormatAmount(a.SalePrice), reporting.FormatAmount(a.Profit))
	}
	return w.Flush()
}

// ─── buy / sell ─────────────────────────────────────────────────────────────

var buyCmd = &cobra.Command{
	Use:   "buy PROJECT NAME PRICE",
	Short: "Record the purchase of an animal",
	Args:  cobra.ExactArgs(3),
	RunE:  runBuy,
}

func runBuy(cmd *cobra.Command, args []string) error {
	price, err := models.ParseAmount(args[2])
	if err != nil {
		return err
	}
	date, err := dateFlag(cmd)
	if err != nil {
		return err
	}
	description, _ := cmd.Flags().GetString("description")

	animal, err := current.store.AppendAnimal(cmd.Context(), args[0], store.AnimalEntry{
		Name:          args[1],
		Description:   description,
		PurchasePrice: price,
		PurchaseDate:  date,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Bought %s for %s in %s on %s.\n",
		animal.Name, reporting.FormatAmount(animal.PurchasePrice), animal.Project, animal.PurchaseDate.Format(dateLayout))
	return nil
}

var sellCmd = &cobra.Command{
	Use:   "sell PROJECT NAME PRICE",
	Short: "Record the sale of a present animal",
	Args:  cobra.ExactArgs(3),
	RunE:  runSell,
}

func runSell(cmd *cobra.Command, args []string) error {
	price, err := models.ParseAmount(args[2])
	if err != nil {
		return err
	}
	date, err := dateFlag(cmd)
	if err != nil {
		return err
	}

	animal, err := current.store.MarkSold(cmd.Context(), args[0], args[1], price, date)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sold %s for %s, profit %s.\n",
		animal.Name, reporting.FormatAmount(animal.SalePrice), reporting.FormatAmount(animal.Profit))
	return nil
}

// ─── expense / note ─────────────────────────────────────────────────────────

var expenseCmd = &cobra.Command{
	Use:   "expense PROJECT CATEGORY AMOUNT",
	Short: "Record a project expense",
	Long: fmt.Sprintf(`Record a project expense. Usual categories: %s.
Any other label is accepted.`, strings.Join(models.DefaultExpenseCategories, ", ")),
	Args: cobra.ExactArgs(3),
	RunE: runExpense,
}

func runExpense(cmd *cobra.Command, args []string) error {
	amount, err := models.ParseAmount(args[2])
	if err != nil {
		return err
	}
	date, err := dateFlag(cmd)
	if err != nil {
		return err
	}
	note, _ := cmd.Flags().GetString("note")

	expense, err := current.store.AppendExpense(cmd.Context(), args[0], store.ExpenseEntry{
		Category: args[1],
		Amount:   amount,
		Date:     date,
		Note:     note,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Expense %s %s recorded in %s.\n",
		expense.Category, reporting.FormatAmount(expense.Amount), expense.Project)
	return nil
}

var noteCmd = &cobra.Command{
	Use:   "note PROJECT TEXT...",
	Short: "Add a journal entry to a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := current.store.AppendNote(cmd.Context(), args[0], store.NoteEntry{
			Timestamp: time.Now().In(current.loc),
			Comment:   strings.Join(args[1:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note added to %s.\n", note.Project)
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes PROJECT",
	Short: "Show the journal of a project, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		notes := current.store.ProjectNotes(cmd.Context(), args[0])
		if len(notes) == 0 {
			fmt.Fprintf(out, "No notes in %s.\n", args[0])
			return nil
		}
		for _, n := range notes {
			fmt.Fprintf(out, "%s  %s\n", n.Timestamp.Format("2006-01-02 15:04"), n.Comment)
		}
		return nil
	},
}

// ─── summary / history ──────────────────────────────────────────────────────

var summaryCmd = &cobra.Command{
	Use:   "summary PROJECT",
	Short: "Print the ledger summary of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := current.reports.Summary(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), reporting.FormatSummary(summary, time.Now().In(current.loc)))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history PROJECT",
	Short: "Show archived summaries of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt64("limit")
		snapshots, err := current.reports.History(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tSTOCK\tNET PROFIT\tROI")
		for _, s := range snapshots {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f%%\n",
				s.CreatedAt.In(current.loc).Format(dateLayout),
				reporting.FormatAmount(decimal.NewFromFloat(s.StockValue)),
				reporting.FormatAmount(decimal.NewFromFloat(s.NetProfit)),
				s.ROI)
		}
		return w.Flush()
	},
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// dateFlag reads --date in the ledger timezone, defaulting to today.
func dateFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		now := time.Now().In(current.loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, current.loc), nil
	}
	date, err := time.ParseInLocation(dateLayout, raw, current.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must use YYYY-MM-DD, got %q", raw)
	}
	return date, nil
}
