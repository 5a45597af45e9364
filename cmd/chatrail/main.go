package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/christopherklint97/chatrail/internal/config"
	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/flow"
	"github.com/christopherklint97/chatrail/internal/render"
	"github.com/christopherklint97/chatrail/internal/schedule"
	"github.com/christopherklint97/chatrail/internal/tui"
	"github.com/christopherklint97/chatrail/internal/turn"
)

var rootCmd = &cobra.Command{
	Use:   "chatrail",
	Short: "HR directory chat assistant",
	Long:  "chatrail answers plain-English questions about people, paychecks and time off, asking which person you mean when a name is ambiguous.",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat panel",
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <text>",
	Short: "Ask one question and print the transcript",
	Long:  "ask runs the conversation without waiting on real timers. Each --reply is sent after the previous answer has arrived.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

var directoryCmd = &cobra.Command{
	Use:       "directory [employees|departments|payruns]",
	Short:     "List directory records",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"employees", "departments", "payruns"},
	RunE:      runDirectory,
}

var employeeCmd = &cobra.Command{
	Use:   "employee <id>",
	Short: "Show one employee's latest paycheck",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployee,
}

var ptoCmd = &cobra.Command{
	Use:   "pto",
	Short: "Submitted time-off requests",
}

var ptoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted time-off requests",
	RunE:  runPTOList,
}

var ptoExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Print a request as an iCalendar file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPTOExport,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of structured message payloads",
	RunE:  runSchema,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set <section.key> <value>",
	Short: "Set one config value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	askCmd.Flags().StringArray("reply", nil, "Follow-up message (repeatable)")
	askCmd.Flags().Bool("json", false, "Print structured payload envelopes instead of rendered text")

	directoryCmd.AddCommand(employeeCmd)
	ptoCmd.AddCommand(ptoListCmd)
	ptoCmd.AddCommand(ptoExportCmd)
	configCmd.AddCommand(configSetCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(directoryCmd)
	rootCmd.AddCommand(ptoCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	st, err := openStack(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	dispatcher := tui.NewDispatcher()
	seq := st.sequencer(schedule.NewTimer(dispatcher.Dispatch), time.Now)
	app := tui.NewApp(ctx, seq, st.dir, dispatcher, cfg.Org.Name, st.logger)

	if err := st.db.SetState("last_chat_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		st.logger.Warn("recording session start", "error", err)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	replies, _ := cmd.Flags().GetStringArray("reply")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := openStack(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	clock := schedule.NewManual()
	start := time.Now()
	now := func() time.Time { return start.Add(clock.Elapsed()) }
	seq := st.sequencer(clock, now)

	for _, msg := range append([]string{args[0]}, replies...) {
		seq.OnUserTurn(ctx, msg)
		clock.RunAll()
	}

	if asJSON {
		return printEnvelopes(seq.Turns())
	}

	r := render.New(100, st.logger).WithClock(now)
	for i, t := range seq.Turns() {
		if i > 0 {
			fmt.Println()
		}
		label := "Assistant:"
		if t.Author == turn.User {
			label = "You:"
		}
		fmt.Println(label)
		fmt.Println(r.Turn(t))
	}
	return nil
}

func printEnvelopes(turns []turn.Turn) error {
	type line struct {
		ID      string          `json:"id"`
		Author  string          `json:"author"`
		Created time.Time       `json:"created"`
		Content json.RawMessage `json:"content"`
	}
	enc := json.NewEncoder(os.Stdout)
	for _, t := range turns {
		data, err := turn.Encode(t.Content)
		if err != nil {
			return fmt.Errorf("encoding turn %s: %w", t.ID, err)
		}
		if err := enc.Encode(line{ID: t.ID, Author: string(t.Author), Created: t.Created, Content: data}); err != nil {
			return fmt.Errorf("writing turn %s: %w", t.ID, err)
		}
	}
	return nil
}

func runDirectory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := openStack(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	what := "employees"
	if len(args) == 1 {
		what = args[0]
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)

	switch what {
	case "employees":
		emps, err := st.dir.ListEmployees(ctx)
		if err != nil {
			return fmt.Errorf("listing employees: %w", err)
		}
		tw.AppendHeader(table.Row{"ID", "Name", "Department", "Role", "Salary", "Last paycheck", "Manager"})
		for _, e := range emps {
			tw.AppendRow(table.Row{e.ID, e.Name, e.Department, e.Role, "$" + humanize.Comma(e.Salary), e.LastPaycheck, e.Manager})
		}
	case "departments":
		deps, err := st.dir.ListDepartments(ctx)
		if err != nil {
			return fmt.Errorf("listing departments: %w", err)
		}
		tw.AppendHeader(table.Row{"ID", "Name", "Headcount", "Budget"})
		for _, d := range deps {
			tw.AppendRow(table.Row{d.ID, d.Name, d.Headcount, "$" + humanize.Comma(d.Budget)})
		}
	case "payruns":
		runs, err := st.dir.ListPayRuns(ctx)
		if err != nil {
			return fmt.Errorf("listing pay runs: %w", err)
		}
		tw.AppendHeader(table.Row{"ID", "Period", "Total", "Employees", "Processed"})
		for _, p := range runs {
			tw.AppendRow(table.Row{p.ID, p.Period, "$" + humanize.Comma(p.TotalAmount), p.EmployeeCount, p.ProcessedDate})
		}
	default:
		return fmt.Errorf("unknown listing %q (want employees, departments or payruns)", what)
	}

	tw.Render()
	return nil
}

func runEmployee(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid employee id %q", args[0])
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := openStack(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	e, err := directory.EmployeeByID(ctx, st.dir, id)
	if err != nil {
		return fmt.Errorf("looking up employee %d: %w", id, err)
	}
	card, err := st.synth.Resolve(employeeCandidate(e), "latest paycheck")
	if err != nil {
		return fmt.Errorf("building paycheck for %s: %w", e.Name, err)
	}
	fmt.Println(render.New(100, st.logger).Turn(turn.Turn{Author: turn.Assistant, Content: card, Created: time.Now()}))
	return nil
}

func runPTOList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := openStack(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	reqs, err := st.db.ListPTORequests(ctx)
	if err != nil {
		return fmt.Errorf("listing time-off requests: %w", err)
	}
	if len(reqs) == 0 {
		fmt.Println("No time-off requests submitted.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "From", "To", "Days", "Manager", "Status", "Submitted"})
	for _, r := range reqs {
		tw.AppendRow(table.Row{
			r.ID,
			r.Start.Format(flow.DateLayout),
			r.End.Format(flow.DateLayout),
			r.Days,
			r.Manager,
			r.Status,
			humanize.Time(r.CreatedAt),
		})
	}
	tw.Render()
	return nil
}

func runPTOExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, err := openStack(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	reqs, err := st.db.ListPTORequests(ctx)
	if err != nil {
		return fmt.Errorf("listing time-off requests: %w", err)
	}
	for _, r := range reqs {
		if r.ID == args[0] || strings.HasPrefix(r.ID, args[0]) {
			fmt.Print(r.ICS)
			return nil
		}
	}
	return fmt.Errorf("no time-off request %q", args[0])
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(turn.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.WriteDefault(configPath); err != nil {
			return err
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if err := config.Set(configPath, args[0], parseValue(args[1])); err != nil {
		return err
	}
	fmt.Printf("Set %s in %s\n", args[0], configPath)
	return nil
}

// parseValue keeps numbers and booleans typed in the TOML file.
func parseValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
