package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/internship-tracker/internal/importer"
	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/report"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var delimiter string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a roster (.csv, .xlsx or .xls) and reconcile venues and interns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				result, err := a.reconciler.ImportFile(ctx, args[0], a.readOptions(delimiter))
				if err != nil {
					return err
				}
				printImportReport(a, result)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "CSV delimiter used when sniffing is inconclusive")
	return cmd
}

func printImportReport(a *app, r importer.Report) {
	printf(a.out, "run %s (%s)\n", r.RunID, r.Source)
	printf(a.out, "rows: %d  skipped: %d  failed: %d  duplicates: %d\n", r.Rows, r.Skipped, r.Failed, r.DuplicatesIgnored)
	printf(a.out, "venues: %d created, %d updated, %d reused\n", r.VenuesCreated, r.VenuesUpdated, r.VenuesReused)
	printf(a.out, "interns: %d created, %d updated\n", r.InternsCreated, r.InternsUpdated)
	printf(a.out, "documents seeded: %d  checklist failures: %d\n", r.DocumentsSeeded, r.ChecklistFailures)
	for _, failure := range r.Failures {
		printf(a.out, "  line %d (%s): %s\n", failure.Line, failure.Name, failure.Reason)
	}
}

func newInternsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interns",
		Short: "List and search interns",
	}

	var venueID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List interns ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				var (
					interns []persistence.Intern
					err     error
				)
				if venueID > 0 {
					interns, err = a.services.Interns.ListByVenue(ctx, venueID)
				} else {
					interns, err = a.services.Interns.List(ctx)
				}
				if err != nil {
					return err
				}
				return printInterns(a, interns)
			})
		},
	}
	list.Flags().Int64Var(&venueID, "venue", 0, "only interns placed at this venue id")

	search := &cobra.Command{
		Use:   "search <fragment>",
		Short: "Find interns whose name contains fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				interns, err := a.services.Interns.SearchByName(ctx, args[0])
				if err != nil {
					return err
				}
				return printInterns(a, interns)
			})
		},
	}

	cmd.AddCommand(list, search)
	return cmd
}

func printInterns(a *app, interns []persistence.Intern) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOME\tRA\tPERÍODO\tLOCAL")
	for _, intern := range interns {
		venue := "-"
		if intern.VenueID != nil {
			venue = strconv.FormatInt(*intern.VenueID, 10)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", intern.ID, intern.Name, intern.RegistrationNumber, intern.Term, venue)
	}
	return w.Flush()
}

func newVenuesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "List and search venues",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List venues ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				venues, err := a.services.Venues.List(ctx)
				if err != nil {
					return err
				}
				return printVenues(a, venues)
			})
		},
	}

	search := &cobra.Command{
		Use:   "search <fragment>",
		Short: "Find venues whose name contains fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				venues, err := a.services.Venues.SearchByName(ctx, args[0])
				if err != nil {
					return err
				}
				return printVenues(a, venues)
			})
		},
	}

	cmd.AddCommand(list, search)
	return cmd
}

func printVenues(a *app, venues []persistence.Venue) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLOCAL\tSUPERVISOR\tEMAIL\tTELEFONE")
	for _, venue := range venues {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", venue.ID, venue.Name, venue.SupervisorName, venue.SupervisorEmail, venue.SupervisorPhone)
	}
	return w.Flush()
}

func newCriteriaCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "Manage evaluation criteria",
	}

	var (
		description string
		weight      float64
	)
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a weighted criterion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				criteria := persistence.EvaluationCriteria{Name: args[0], Description: description, Weight: weight}
				id, err := a.services.Criteria.Add(ctx, &criteria)
				if err != nil {
					return err
				}
				printf(a.out, "criteria %d created\n", id)
				return nil
			})
		},
	}
	add.Flags().StringVar(&description, "description", "", "criterion description")
	add.Flags().Float64Var(&weight, "weight", 0, "maximum score, must be greater than zero")
	_ = add.MarkFlagRequired("weight")

	list := &cobra.Command{
		Use:   "list",
		Short: "List criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				criteria, err := a.services.Criteria.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCRITÉRIO\tPESO")
				for _, c := range criteria {
					fmt.Fprintf(w, "%d\t%s\t%g\n", c.ID, c.Name, c.Weight)
				}
				return w.Flush()
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newGradesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grades",
		Short: "Record grades",
	}

	record := &cobra.Command{
		Use:   "record <intern-id> <criteria-id> <value>",
		Short: "Set the grade of an intern for a criterion",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			internID, err := parseID(args[0])
			if err != nil {
				return err
			}
			criteriaID, err := parseID(args[1])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(strings.Replace(args[2], ",", ".", 1), 64)
			if err != nil {
				return fmt.Errorf("invalid grade %q: %w", args[2], err)
			}
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				grade, err := a.services.Grades.Record(ctx, internID, criteriaID, value)
				if err != nil {
					return err
				}
				printf(a.out, "grade %d: %g\n", grade.ID, grade.Value)
				return nil
			})
		},
	}

	cmd.AddCommand(record)
	return cmd
}

func newReportCmd(root *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report <intern-id>",
		Short: "Export the boletim of an intern as a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			internID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("boletim-%d.xlsx", internID)
			}
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := a.reports.Export(ctx, internID, f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				printf(a.out, "boletim written to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default boletim-<id>.xlsx)")
	return cmd
}

func newCalendarCmd(root *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "calendar <intern-id>",
		Short: "Export the supervision meetings of an intern as an .ics file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			internID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("reunioes-%d.ics", internID)
			}
			return withApp(cmd, root, func(ctx context.Context, a *app) error {
				intern, err := a.services.Interns.Get(ctx, internID)
				if err != nil {
					return err
				}
				if intern == nil {
					return fmt.Errorf("intern %d: %w", internID, persistence.ErrNotFound)
				}
				meetings, err := a.services.Meetings.ListByIntern(ctx, internID)
				if err != nil {
					return err
				}

				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := report.WriteMeetingsCalendar(*intern, meetings, time.Now(), f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				printf(a.out, "%d meetings written to %s\n", len(meetings), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default reunioes-<id>.ics)")
	return cmd
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}
