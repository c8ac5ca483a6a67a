// educli is a small command-line shell over the platform client: log in,
// inspect the session, browse materials, log out. It wires the full stack
// the way an embedding application would.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/eduhub/go-edu-client/authapi"
	"github.com/eduhub/go-edu-client/internal/config"
	"github.com/eduhub/go-edu-client/internal/utils"
	"github.com/eduhub/go-edu-client/platform"
	"github.com/eduhub/go-edu-client/session"
	"github.com/eduhub/go-edu-client/token"
	"github.com/eduhub/go-edu-client/token/credstore"
	"github.com/eduhub/go-edu-client/transport"
	"github.com/eduhub/go-edu-client/users"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store, err := credstore.NewFileStore(cfg.CredentialsFile(), credstore.WithLogger(log))
	if err != nil {
		return err
	}
	verifier, err := token.NewVerifier(cfg.JWTSecret())
	if err != nil {
		return err
	}
	api, err := authapi.New(cfg.APIBaseURL(), authapi.WithLogger(log))
	if err != nil {
		return err
	}
	mgr, err := session.NewManager(api, store, verifier,
		session.WithLogger(log),
		session.WithLivenessInterval(cfg.LivenessInterval()),
	)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := mgr.Initialize(); err != nil {
		return err
	}

	ctx := context.Background()
	switch args[0] {
	case "login":
		return login(ctx, cfg, mgr, args[1:])
	case "register":
		return register(ctx, mgr, args[1:])
	case "whoami":
		return whoami(mgr)
	case "materials":
		return materials(ctx, cfg, mgr)
	case "progress":
		return progress(ctx, cfg, mgr)
	case "streak":
		return streak(ctx, cfg, mgr)
	case "logout":
		return mgr.Logout(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func login(ctx context.Context, cfg config.Config, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	if err := mgr.Login(ctx, *email, *password); err != nil {
		return err
	}
	displayBanner(cfg.AppName())
	return whoami(mgr)
}

func register(ctx context.Context, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	role := fs.String("role", string(users.RoleStudent), "account role (student, teacher, admin)")
	_ = fs.Parse(args)

	parsedRole, err := users.ParseRole(*role)
	if err != nil {
		return err
	}
	if err := mgr.Register(ctx, *name, *email, *password, parsedRole); err != nil {
		return err
	}
	fmt.Println("Registered. Log in to start a session.")
	return nil
}

func whoami(mgr *session.Manager) error {
	snap := mgr.Snapshot()
	if !snap.IsAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", snap.User.Name, snap.User.Email, snap.User.Role)
	return nil
}

func platformClient(cfg config.Config, mgr *session.Manager) (*platform.Client, error) {
	httpClient, err := transport.NewHTTPClient(mgr, cfg.RequestTimeout())
	if err != nil {
		return nil, err
	}
	return platform.New(cfg.APIBaseURL(), httpClient)
}

func materials(ctx context.Context, cfg config.Config, mgr *session.Manager) error {
	client, err := platformClient(cfg, mgr)
	if err != nil {
		return err
	}

	items, err := client.Materials(ctx)
	if err != nil {
		return err
	}
	for _, m := range items {
		fmt.Printf("%-30s %s\n", m.Title, m.URL)
	}
	return nil
}

func progress(ctx context.Context, cfg config.Config, mgr *session.Manager) error {
	snap := mgr.Snapshot()
	if !snap.IsAuthenticated {
		return fmt.Errorf("not logged in")
	}
	client, err := platformClient(cfg, mgr)
	if err != nil {
		return err
	}

	summaries, err := client.ProgressSummary(ctx, snap.User.Email)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		fmt.Printf("%-25s %d/%d (%d%%)\n", s.SubjectName, s.CompletedMaterials, s.TotalMaterials, s.CompletionPercentage)
	}
	return nil
}

func streak(ctx context.Context, cfg config.Config, mgr *session.Manager) error {
	snap := mgr.Snapshot()
	if !snap.IsAuthenticated {
		return fmt.Errorf("not logged in")
	}
	client, err := platformClient(cfg, mgr)
	if err != nil {
		return err
	}

	st, err := client.Streak(ctx, snap.User.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Current streak: %d days (longest %d, last active %s)\n",
		st.CurrentStreak, st.LongestStreak, utils.Value(st.LastActive))
	return nil
}

func displayBanner(appName string) {
	myFigure := figure.NewFigure(appName, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage() {
	fmt.Println("usage: educli <login|register|whoami|materials|progress|streak|logout> [flags]")
}
