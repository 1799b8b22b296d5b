package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/bootstrap"
	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/store"
	"github.com/aanand-mishra/student-records/internal/types"
)

// fieldFlags are the record fields exposed as flags on add and edit.
// Flag names equal form field names, so values go straight to SetField.
var fieldFlags = []struct {
	name  string
	usage string
}{
	{form.FieldID, "student id"},
	{form.FieldName, "full name"},
	{form.FieldGender, `gender ("Nam" or "Nữ")`},
	{form.FieldBirthday, "birthday, YYYY-MM-DD"},
	{form.FieldHometown, "hometown"},
	{form.FieldAddress, "address"},
	{form.FieldAge, "age in years"},
}

// app is what every subcommand works against.
type app struct {
	storage storage.Storage
	records *store.Store
}

func (a *app) Close() error { return a.storage.Close() }

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "students",
		Short:         "Create, edit, delete and search student records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"),
		"Path to the configuration YAML file (or set CONFIG_PATH env)")

	open := func(cmd *cobra.Command) (*app, error) {
		return openApp(cmd.Context(), configPath, cmd.ErrOrStderr())
	}

	root.AddCommand(
		newListCmd(open),
		newSearchCmd(open),
		newAddCmd(open),
		newEditCmd(open),
		newDeleteCmd(open),
	)
	return root
}

type opener func(cmd *cobra.Command) (*app, error)

func openApp(ctx context.Context, configPath string, logOut io.Writer) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := bootstrap.SetupLogger(cfg.Env, logOut)

	st, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	records, err := store.New(ctx, st, log)
	if err != nil {
		st.Close()
		return nil, err
	}
	log.Debug("store ready", slog.String("driver", cfg.Storage.Driver))

	return &app{storage: st, records: records}, nil
}

func newListCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every student in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return printStudents(cmd.OutOrStdout(), a.records.List())
		},
	}
}

func newSearchCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "search [name]",
		Short: "List students whose name contains the text, ignoring case",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return printStudents(cmd.OutOrStdout(), a.records.Search(name))
		},
	}
}

func newAddCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			f := form.NewCreate(a.records)
			if err := fillFromFlags(cmd, f); err != nil {
				return err
			}
			outcome, err := f.Submit(cmd.Context())
			if err != nil {
				return submitError(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", outcome.Student.ID)
			return nil
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func newEditCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a student; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			existing, ok := a.records.Get(args[0])
			if !ok {
				return fmt.Errorf("edit %q: %w", args[0], store.ErrNotFound)
			}

			f := form.NewEdit(a.records, existing)
			if err := fillFromFlags(cmd, f); err != nil {
				return err
			}
			outcome, err := f.Submit(cmd.Context())
			if err != nil {
				return submitError(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", outcome.Student.ID)
			return nil
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func newDeleteCmd(open opener) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			st, ok := a.records.Get(args[0])
			if !ok {
				return fmt.Errorf("delete %q: %w", args[0], store.ErrNotFound)
			}

			if !yes {
				prompt := fmt.Sprintf("Delete student %s (%s)? [y/N]: ", st.ID, st.Name)
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
					fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
			}

			if err := a.records.Delete(cmd.Context(), st.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", st.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func addFieldFlags(cmd *cobra.Command) {
	for _, ff := range fieldFlags {
		cmd.Flags().String(ff.name, "", ff.usage)
	}
}

// fillFromFlags copies only the flags the user actually set, so edit
// keeps every field that wasn't mentioned.
func fillFromFlags(cmd *cobra.Command, f *form.Form) error {
	for _, ff := range fieldFlags {
		flag := cmd.Flags().Lookup(ff.name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := f.SetField(ff.name, flag.Value.String()); err != nil {
			return err
		}
	}
	return nil
}

// submitError prints validation messages one per line and returns a
// short error for the exit status.
func submitError(w io.Writer, err error) error {
	var verrs form.Errors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "  %s: %s\n", field, verrs[field])
	}
	return errors.New("validation failed")
}

// confirm asks prompt on out and reads one line from in. Only "y" or
// "yes" (any case) confirms; anything else, including EOF, cancels.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func printStudents(w io.Writer, students []types.Student) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tGENDER\tBIRTHDAY\tHOMETOWN\tADDRESS\tAGE")
	for i, st := range students {
		age := ""
		if st.Age != nil {
			age = fmt.Sprint(*st.Age)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, st.ID, st.Name, st.Gender, st.Birthday, st.Hometown, st.Address, age)
	}
	return tw.Flush()
}
