package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/galenus-health/galenus-go/adapters/events"
	"github.com/galenus-health/galenus-go/adapters/store"
	"github.com/galenus-health/galenus-go/config"
	"github.com/galenus-health/galenus-go/core"
	"github.com/galenus-health/galenus-go/ports"
	"github.com/galenus-health/galenus-go/service"
	"github.com/galenus-health/galenus-go/transport/rest"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "login":
		return runLogin(args)
	case "logout":
		return runLogout(args)
	case "whoami":
		return runWhoami(args)
	case "register":
		return runRegister(args)
	case "verify":
		return runVerify(args)
	case "request-verification":
		return runRequestVerification(args)
	case "inventory":
		return runInventory(args)
	case "sales":
		return runSales(args)
	case "prescriptions":
		return runPrescriptions(args)
	case "medicines":
		return runMedicines(args)
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: galenus <subcommand> [flags]

Subcommands:
  login                 Sign in and persist the credential
  logout                Sign out locally and best-effort remotely
  whoami                Restore the session and print the profile
  register              Submit a registration request
  verify                Confirm an emailed verification code
  request-verification  Ask for a fresh verification code
  inventory             List stock entries
  sales                 List sales
  prescriptions         List prescriptions
  medicines             Search or upload the medicine database

Run 'galenus <subcommand> --help' for subcommand flags.
`)
}

// app bundles everything a subcommand needs.
type app struct {
	session *service.Session
	api     *rest.Client
	store   ports.TokenStore
	close   func()
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var tokenStore ports.TokenStore
	cleanup := func() {}
	switch cfg.Store {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis URL: %w", err)
		}
		rs := store.NewRedisStore(redis.NewClient(opts))
		tokenStore = rs
		cleanup = func() { rs.Close() }
	default:
		tokenStore = store.NewFileStore(cfg.TokenPath)
	}

	api, err := rest.New(cfg.BaseURL, tokenStore, rest.WithLogger(logger))
	if err != nil {
		cleanup()
		return nil, err
	}

	// Session events stay in-process unless Redis is configured, in
	// which case peer terminals on the same counter see them too.
	var publisher message.Publisher
	wmLogger := watermill.NewSlogLogger(logger)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("parse redis URL: %w", err)
		}
		publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: redis.NewClient(opts),
		}, wmLogger)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("create event publisher: %w", err)
		}
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}

	session := service.NewSession(api, tokenStore, events.NewWatermillPublisher(publisher), service.WithLogger(logger))
	return &app{session: session, api: api, store: tokenStore, close: cleanup}, nil
}

func commonFlags(fs *pflag.FlagSet) *string {
	return fs.StringP("config", "c", "", "config file (default "+config.DefaultPath()+")")
}

func runLogin(args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	profile, err := a.session.Login(context.Background(), *email, string(password))
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s %s <%s>\n", profile.FirstName, profile.SecondName, profile.Email)
	return nil
}

func runLogout(args []string) error {
	fs := pflag.NewFlagSet("logout", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.Logout(context.Background()); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runWhoami(args []string) error {
	fs := pflag.NewFlagSet("whoami", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.session.Restore(ctx); err != nil {
		return err
	}
	if a.session.State() != core.StateAuthenticated {
		fmt.Println("Not signed in")
		return nil
	}

	profile := a.session.User()
	fmt.Printf("%s %s <%s>\n", profile.FirstName, profile.SecondName, profile.Email)

	if token, ok, _ := a.store.Get(ctx); ok {
		if exp, err := token.ExpiresAt(); err == nil && !exp.IsZero() {
			fmt.Printf("Access token expires %s\n", exp.Local().Format(time.RFC1123))
		}
	}
	return nil
}

func runRegister(args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	firstName := fs.String("first-name", "", "first name")
	secondName := fs.String("second-name", "", "second name")
	email := fs.String("email", "", "account email")
	phone := fs.String("phone", "", "phone number")
	gender := fs.String("gender", "", "gender")
	address := fs.String("address", "", "address")
	birthdate := fs.String("birthdate", "", "birthdate (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var birth time.Time
	if *birthdate != "" {
		var err error
		birth, err = time.Parse("2006-01-02", *birthdate)
		if err != nil {
			return fmt.Errorf("invalid --birthdate: %w", err)
		}
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	msg, err := a.session.Register(context.Background(), core.RegisterForm{
		FirstName:       *firstName,
		SecondName:      *secondName,
		Email:           *email,
		PhoneNumber:     *phone,
		Password:        string(password),
		ConfirmPassword: string(confirm),
		Gender:          *gender,
		Address:         *address,
		Birthdate:       birth,
	})
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func runVerify(args []string) error {
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	email := fs.String("email", "", "account email")
	code := fs.String("code", "", "verification code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *code == "" {
		return fmt.Errorf("--email and --code are required")
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.Verify(context.Background(), *email, *code); err != nil {
		return err
	}
	fmt.Println("Email verified. You can sign in now.")
	return nil
}

func runRequestVerification(args []string) error {
	fs := pflag.NewFlagSet("request-verification", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.RequestVerification(context.Background(), *email); err != nil {
		return err
	}
	fmt.Println("Verification email requested.")
	return nil
}

func runInventory(args []string) error {
	fs := pflag.NewFlagSet("inventory", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	items, err := a.api.Inventory(context.Background())
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("%d\tbatch %s\texpires %s\tprice %s\n",
			item.ID, item.BatchNumber, item.ExpirationDate.Format("2006-01-02"), item.PurchasePrice)
	}
	return nil
}

func runSales(args []string) error {
	fs := pflag.NewFlagSet("sales", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	sales, err := a.api.Sales(context.Background())
	if err != nil {
		return err
	}
	for _, sale := range sales {
		fmt.Printf("%d\t%s\ttotal %s\t%s/%s\n",
			sale.ID, sale.InvoiceNumber, sale.TotalAmount, sale.PaymentMethod, sale.PaymentStatus)
	}
	return nil
}

func runPrescriptions(args []string) error {
	fs := pflag.NewFlagSet("prescriptions", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	prescriptions, err := a.api.Prescriptions(context.Background())
	if err != nil {
		return err
	}
	for _, p := range prescriptions {
		texts := make([]string, 0, len(p.Dosage))
		for _, d := range p.Dosage {
			texts = append(texts, d.Text)
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", p.ID, p.Status, p.AuthoredOn.Format("2006-01-02"), strings.Join(texts, "; "))
	}
	return nil
}

func runMedicines(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: galenus medicines <search|upload|get> ...")
	}
	action := args[0]
	args = args[1:]

	fs := pflag.NewFlagSet("medicines", pflag.ContinueOnError)
	configPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos := fs.Args()

	a, err := buildApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	switch action {
	case "search":
		if len(pos) < 1 {
			return fmt.Errorf("usage: galenus medicines search <query>")
		}
		medicines, err := a.api.SearchMedicines(ctx, pos[0])
		if err != nil {
			return err
		}
		for _, m := range medicines {
			fmt.Printf("%d\t%s\t%s\t%s\n", m.ID, m.Name, m.ActiveIngredient, m.Price)
		}
		return nil
	case "get":
		if len(pos) < 1 {
			return fmt.Errorf("usage: galenus medicines get <id>")
		}
		id, err := strconv.Atoi(pos[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", pos[0])
		}
		m, err := a.api.Medicine(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", m.ID, m.Name, m.ActiveIngredient, m.Price)
		return nil
	case "upload":
		if len(pos) < 1 {
			return fmt.Errorf("usage: galenus medicines upload <file.csv>")
		}
		f, err := os.Open(pos[0])
		if err != nil {
			return err
		}
		defer f.Close()
		result, err := a.api.UploadMedicineDatabase(ctx, pos[0], f)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d rows)\n", result.Message, result.Imported)
		return nil
	default:
		return fmt.Errorf("unknown medicines action: %q", action)
	}
}
