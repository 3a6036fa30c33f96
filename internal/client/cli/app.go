package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/fitmacro/internal/client/client"
	"github.com/dmitrijs2005/fitmacro/internal/client/config"
	"github.com/dmitrijs2005/fitmacro/internal/client/services"
	"github.com/dmitrijs2005/fitmacro/internal/filex"
)

type App struct {
	config        *config.Config
	authService   services.AuthService
	reportService services.ReportService
	userName      string
	reader        *bufio.Reader
	out           io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	path, err := filex.EnsureParentDir(c.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("error preparing session file: %w", err)
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error initializing session store: %w", err)
	}

	apiClient, err := client.NewFitMacroClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:        c,
		authService:   services.NewAuthService(apiClient, db),
		reportService: services.NewReportService(apiClient),
		reader:        bufio.NewReader(os.Stdin),
		out:           os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// withTimeout bounds a single server call by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)

	fmt.Fprintln(a.out, titleStyle.Render("FitMacro CLI")+mutedStyle.Render(" (type 'help' for commands)"))

	if name, err := a.authService.Restore(ctx); err != nil {
		fmt.Fprintf(a.out, "could not restore session: %v\n", err)
	} else if name != "" {
		a.userName = name
		fmt.Fprintf(a.out, "Welcome back, %s\n", name)
	}

	pctx, cancel := a.withTimeout(ctx)
	if err := a.authService.Ping(pctx); err != nil {
		fmt.Fprintln(a.out, overStyle.Render("Server unavailable: "+err.Error()))
	}
	cancel()

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
