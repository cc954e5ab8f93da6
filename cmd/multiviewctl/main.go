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

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ettle/strcase"

	"github.com/goliatone/go-multiview/components/multiview"
	"github.com/goliatone/go-multiview/components/multiview/commands"
	"github.com/goliatone/go-multiview/components/multiview/queries"
	"github.com/goliatone/go-multiview/components/multiview/termview"
	"github.com/goliatone/go-multiview/pkg/export"
	"github.com/goliatone/go-multiview/pkg/ghost"
)

// Globals are shared by every subcommand. Set flags win over the config file.
type Globals struct {
	Config    string `short:"c" type:"path" env:"MULTIVIEW_CONFIG" help:"YAML configuration file."`
	Storage   string `env:"MULTIVIEW_STORAGE" help:"Storage driver: memory, file, sqlite, postgres or redis."`
	Dir       string `type:"path" env:"MULTIVIEW_DIR" help:"State directory for the file and sqlite drivers."`
	DSN       string `name:"dsn" env:"MULTIVIEW_DSN" help:"Connection string for sqlite or postgres."`
	RedisAddr string `name:"redis-addr" env:"MULTIVIEW_REDIS_ADDR" help:"Redis address for the redis driver."`
	LogLevel  string `env:"MULTIVIEW_LOG_LEVEL" help:"Log level (debug, info, warn, error)."`
	LogFormat string `env:"MULTIVIEW_LOG_FORMAT" help:"Log format (json or console)."`
}

type cli struct {
	Globals

	List      listCmd      `cmd:"" help:"List stored layouts."`
	Show      showCmd      `cmd:"" help:"Render a layout in the terminal."`
	Create    createCmd    `cmd:"" help:"Create a layout seeded with default panels."`
	Select    selectCmd    `cmd:"" help:"Make a layout the active one."`
	Delete    deleteCmd    `cmd:"" help:"Delete a layout."`
	Broadcast broadcastCmd `cmd:"" help:"Push the active layout to an audience."`
	Export    exportCmd    `cmd:"" help:"Export layouts to an Excel workbook."`
	Simulator simulatorCmd `cmd:"" help:"Show or change the ghost-user simulator flag."`
	Ghost     ghostCmd     `cmd:"" help:"Manage simulator ghost users."`
	Serve     serveCmd     `cmd:"" help:"Serve the multi-view page, JSON API and event stream."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("multiviewctl"),
		kong.Description("Manage multi-view dashboard layouts."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&c.Globals)
	kctx.FatalIfErrorf(err)
}

// Resolve loads the config file and applies flag overrides.
func (g *Globals) Resolve() (Config, error) {
	cfg, err := LoadConfig(g.Config)
	if err != nil {
		return cfg, err
	}
	override(&cfg.Storage.Driver, g.Storage)
	override(&cfg.Storage.Dir, g.Dir)
	override(&cfg.Storage.DSN, g.DSN)
	override(&cfg.Redis.Addr, g.RedisAddr)
	override(&cfg.Log.Level, g.LogLevel)
	override(&cfg.Log.Format, g.LogFormat)
	cfg.Normalize()
	return cfg, cfg.Validate()
}

func override(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func (g *Globals) open(ctx context.Context) (*runtime, error) {
	cfg, err := g.Resolve()
	if err != nil {
		return nil, err
	}
	return newRuntime(ctx, cfg)
}

type listCmd struct {
	JSON bool `name:"json" help:"Print layouts as JSON."`
}

func (cmd *listCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	layouts, err := queries.NewLayoutsQuery(rt.service).Query(ctx, queries.LayoutsInput{})
	if err != nil {
		return err
	}
	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(layouts)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ACTIVE", "ID", "NAME", "GRID", "PANELS", "MODIFIED")
	for _, layout := range layouts {
		marker := ""
		if layout.IsActive {
			marker = "*"
		}
		t.Row(
			marker,
			layout.ID,
			layout.Name,
			fmt.Sprintf("%dx%d", layout.Cols, layout.Rows),
			strconv.Itoa(len(layout.Panels)),
			layout.LastModified.Format("2006-01-02 15:04"),
		)
	}
	fmt.Fprintln(os.Stdout, t.Render())
	return nil
}

type showCmd struct {
	ID    string `arg:"" optional:"" help:"Layout id; defaults to the active layout."`
	Width int    `default:"28" help:"Cell width in columns."`
}

func (cmd *showCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	view, err := rt.service.Render(ctx, cmd.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, termview.Render(view, termview.Options{CellWidth: cmd.Width}))
	return nil
}

type createCmd struct {
	Name        string `required:"" help:"Layout name."`
	Description string `help:"Optional description."`
	Cols        int    `default:"2" help:"Grid columns."`
	Rows        int    `default:"2" help:"Grid rows."`
	Select      bool   `help:"Make the new layout active."`
}

func (cmd *createCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var created multiview.Layout
	input := commands.CreateLayoutInput{
		Name:        cmd.Name,
		Description: cmd.Description,
		Cols:        cmd.Cols,
		Rows:        cmd.Rows,
		Result:      &created,
	}
	if err := commands.NewCreateLayoutCommand(rt.service, rt.telemetry).Execute(ctx, input); err != nil {
		return err
	}
	if cmd.Select {
		sel := commands.SelectLayoutInput{LayoutID: created.ID}
		if err := commands.NewSelectLayoutCommand(rt.service, rt.telemetry).Execute(ctx, sel); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stdout, "✓ Created layout %s (%s) with %d panels\n", created.Name, created.ID, len(created.Panels))
	return nil
}

type selectCmd struct {
	ID string `arg:"" help:"Layout id."`
}

func (cmd *selectCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := commands.NewSelectLayoutCommand(rt.service, rt.telemetry).Execute(ctx, commands.SelectLayoutInput{LayoutID: cmd.ID}); err != nil {
		return err
	}
	active, err := rt.service.ActiveLayout(ctx)
	if err != nil {
		return err
	}
	if active.ID != cmd.ID {
		return fmt.Errorf("multiviewctl: layout %s not found", cmd.ID)
	}
	fmt.Fprintf(os.Stdout, "✓ Active layout is now %s\n", active.Name)
	return nil
}

type deleteCmd struct {
	ID string `arg:"" help:"Layout id."`
}

func (cmd *deleteCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := commands.NewDeleteLayoutCommand(rt.service, rt.telemetry).Execute(ctx, commands.DeleteLayoutInput{LayoutID: cmd.ID}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Deleted layout %s\n", cmd.ID)
	return nil
}

type broadcastCmd struct {
	Audience string `default:"all" enum:"all,admins,premium,standard,selected" help:"Target audience."`
}

func (cmd *broadcastCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var receipt multiview.BroadcastReceipt
	input := commands.BroadcastInput{Audience: multiview.Audience(cmd.Audience), Result: &receipt}
	if err := commands.NewBroadcastCommand(rt.service, rt.telemetry).Execute(ctx, input); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Broadcast %s to %s in %s\n",
		receipt.LayoutName, receipt.Audience, receipt.CompletedAt.Sub(receipt.StartedAt).Round(time.Millisecond))
	return nil
}

type exportCmd struct {
	Out string `required:"" type:"path" help:"Destination .xlsx file."`
}

func (cmd *exportCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	layouts, err := rt.service.Layouts(ctx)
	if err != nil {
		return err
	}
	data, err := export.Bytes(layouts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.Out, data, 0o644); err != nil {
		return fmt.Errorf("multiviewctl: write %s: %w", cmd.Out, err)
	}
	fmt.Fprintf(os.Stdout, "✓ Exported %d layouts to %s\n", len(layouts), cmd.Out)
	return nil
}

type simulatorCmd struct {
	State string `arg:"" optional:"" default:"status" enum:"on,off,status" help:"on, off or status."`
}

func (cmd *simulatorCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if cmd.State != "status" {
		input := commands.SetSimulatorInput{Active: cmd.State == "on"}
		if err := commands.NewSetSimulatorCommand(rt.service, rt.telemetry).Execute(ctx, input); err != nil {
			return err
		}
	}
	active, err := rt.service.SimulatorActive(ctx)
	if err != nil {
		return err
	}
	state := "off"
	if active {
		state = "on"
	}
	fmt.Fprintf(os.Stdout, "simulator: %s\n", state)
	return nil
}

type ghostCmd struct {
	Create ghostCreateCmd `cmd:"" help:"Provision a ghost user through the admin API."`
}

type ghostCreateCmd struct {
	Name       string   `required:"" help:"Display name."`
	Username   string   `help:"Login name; derived from --name when empty."`
	Email      string   `help:"Email address."`
	Permission []string `help:"Permissions to grant (repeat the flag)."`
	BaseURL    string   `name:"base-url" env:"MULTIVIEW_GHOST_URL" help:"Admin API base URL; overrides ghost.base_url."`
}

func (cmd *ghostCreateCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.Resolve()
	if err != nil {
		return err
	}
	override(&cfg.Ghost.BaseURL, cmd.BaseURL)
	if cfg.Ghost.BaseURL == "" {
		return fmt.Errorf("multiviewctl: ghost base url is required (--base-url or ghost.base_url)")
	}
	username := cmd.Username
	if username == "" {
		username = strcase.ToSnake(cmd.Name)
	}
	client := ghost.NewClient(ghost.Config{
		BaseURL: cfg.Ghost.BaseURL,
		Token:   cfg.Ghost.Token,
		Timeout: cfg.Ghost.Timeout,
	})
	resp, err := client.Create(ctx, ghost.CreateRequest{
		Name:        cmd.Name,
		Username:    username,
		Email:       cmd.Email,
		Permissions: cmd.Permission,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Created ghost user %s (%s)\n", username, resp.GhostID)
	if resp.InitialPassword != "" {
		fmt.Fprintf(os.Stdout, "  initial password: %s\n", resp.InitialPassword)
	}
	return nil
}
