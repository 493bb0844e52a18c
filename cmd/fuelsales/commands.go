package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"fuelsales/internal/datastore"
	"fuelsales/internal/domain"
	"fuelsales/internal/gateway"
	"fuelsales/internal/service"
	"fuelsales/internal/session"
)

var errUsage = errors.New("usage")

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "inventory":
		return a.inventory(ctx)
	case "list":
		return a.list(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.remove(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n", cmd)
		return errUsage
	}
}

func (a *app) notify(message string) {
	fmt.Fprintln(a.stderr, message)
}

func (a *app) client() *gateway.Client {
	return gateway.New(gateway.Config{BaseURL: a.cfg.APIURL, Timeout: a.cfg.HTTPTimeout})
}

// sessions uses the environment credential when both token and branch are
// given, otherwise whatever login stored.
func (a *app) sessions() service.SessionSource {
	if a.cfg.Token != "" && a.cfg.BranchID != "" {
		return session.Static{Credential: a.cfg.Token, BranchID: a.cfg.BranchID}
	}
	return session.Cached{Cache: a.cache}
}

// workflow builds the sale screen and loads the branch's collections.
func (a *app) workflow(ctx context.Context) (*service.Workflow, error) {
	client := a.client()
	data := datastore.New(client)
	notifier := service.NotifierFunc(a.notify)
	w := service.NewWorkflow(service.New(client, data, notifier), data, a.sessions(), notifier)
	w.SetClock(a.now)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	name := fs.String("login", "", "staff login")
	password := fs.String("password", "", "password (defaults to FUELSALES_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *password == "" {
		*password = os.Getenv("FUELSALES_PASSWORD")
	}

	resp, err := session.Login(ctx, a.client(), a.cache, *name, *password, a.cfg.SessionTTL)
	if err != nil {
		a.notify(describeLogin(err))
		return err
	}
	fmt.Fprintf(a.stdout, "signed in as %s (%s), branch %s\n", strings.TrimSpace(*name), resp.Role, resp.Branch)
	return nil
}

func describeLogin(err error) string {
	var serverErr *domain.ServerError
	switch {
	case service.IsValidation(err):
		return service.MsgFillAllFields
	case errors.Is(err, domain.ErrNetwork):
		return "Network error, please try again"
	case errors.Is(err, domain.ErrAuth):
		return "Invalid credentials"
	case errors.As(err, &serverErr) && serverErr.Message != "":
		return serverErr.Message
	default:
		return "Login failed"
	}
}

func (a *app) logout(ctx context.Context) error {
	if err := session.Logout(ctx, a.cache); err != nil {
		a.notify("Error signing out")
		return err
	}
	fmt.Fprintln(a.stdout, "signed out")
	return nil
}

func (a *app) inventory(ctx context.Context) error {
	w, err := a.workflow(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFUEL\tPRICE/L (RWF)")
	for _, item := range w.Inventory() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", item.ID, item.FuelType, item.UnitPrice.StringFixed(2))
	}
	return tw.Flush()
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	fuel := fs.String("fuel", "", "only show this fuel type")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	w, err := a.workflow(ctx)
	if err != nil {
		return err
	}
	w.SetFilter(*fuel)
	printSales(a.stdout, w.Visible())
	return nil
}

func printSales(out io.Writer, sales []domain.SaleRecord) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tFUEL\tLITERS\tPRICE/L\tTOTAL (RWF)\tPAYMENT")
	for _, s := range sales {
		total := s.Liters.Mul(s.SalePricePerLiter)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.SaleDate, s.FuelType, s.Liters.String(), s.SalePricePerLiter.StringFixed(2), total.StringFixed(2), s.PaymentMode)
	}
	_ = tw.Flush()
}

type saleFlags struct {
	fuel    *string
	liters  *string
	payment *string
	date    *string
}

func (a *app) bindSaleFlags(fs *flag.FlagSet) saleFlags {
	return saleFlags{
		fuel:    fs.String("fuel", "", "fuel type, priced from the branch inventory"),
		liters:  fs.String("liters", "", "liters sold"),
		payment: fs.String("payment", "", "Cash, Card or Mobile Money"),
		date:    fs.String("date", "", "sale date YYYY-MM-DD (default today)"),
	}
}

// apply copies the flags that were given onto the open form.
func (f saleFlags) apply(w *service.Workflow) error {
	if *f.fuel != "" {
		if err := w.SelectFuelType(*f.fuel); err != nil {
			return err
		}
	}
	if *f.liters != "" {
		if err := w.SetLiters(*f.liters); err != nil {
			return err
		}
	}
	if *f.payment != "" {
		mode, ok := domain.ParsePaymentMode(*f.payment)
		if !ok {
			mode = domain.PaymentMode(*f.payment)
		}
		if err := w.SetPaymentMode(mode); err != nil {
			return err
		}
	}
	if *f.date != "" {
		date, err := domain.ParseDate(*f.date)
		if err != nil {
			return err
		}
		if err := w.SetSaleDate(date); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := a.flags("add")
	sf := a.bindSaleFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	w, err := a.workflow(ctx)
	if err != nil {
		return err
	}
	if err := w.StartNew(); err != nil {
		return err
	}
	return a.save(ctx, w, sf)
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := a.flags("edit")
	id := fs.Int64("id", 0, "sale id")
	sf := a.bindSaleFlags(fs)
	if err := fs.Parse(args); err != nil || *id <= 0 {
		return errUsage
	}

	w, err := a.workflow(ctx)
	if err != nil {
		return err
	}
	rec, ok := w.Sale(*id)
	if !ok {
		a.notify(fmt.Sprintf("Sale %d not found for branch %s", *id, w.Session().BranchID))
		return fmt.Errorf("sale %d not found", *id)
	}
	if err := w.StartEdit(rec); err != nil {
		return err
	}
	return a.save(ctx, w, sf)
}

func (a *app) save(ctx context.Context, w *service.Workflow, sf saleFlags) error {
	if err := sf.apply(w); err != nil {
		a.notify(err.Error())
		return err
	}
	saved, err := w.Save(ctx)
	if err != nil {
		return err
	}
	printSales(a.stdout, []domain.SaleRecord{saved})
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := a.flags("delete")
	id := fs.Int64("id", 0, "sale id")
	if err := fs.Parse(args); err != nil || *id <= 0 {
		return errUsage
	}

	w, err := a.workflow(ctx)
	if err != nil {
		return err
	}
	return w.Delete(ctx, *id)
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}
