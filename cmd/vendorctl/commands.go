package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/api"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/storeswitch"
)

var errUsage = errors.New("invalid usage; run vendorctl help")

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "status":
		return a.status()
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.session.Logout(ctx)
		a.out.Success("logged out")
		return nil
	case "stores":
		return a.stores()
	case "switch":
		return a.switchStore(ctx, args)
	case "otp":
		return a.otp(ctx, args)
	case "reset-password":
		return a.resetPassword(ctx, args)
	case "orders":
		return a.orders(ctx, args)
	case "products":
		return a.products(ctx, args)
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}

func (a *app) status() error {
	a.out.Info("backend: " + a.cfg.API.BaseURL)
	a.out.Session(a.session.Snapshot())
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	phone := fs.String("phone", "", "Phone number in international format")
	password := fs.String("password", "", "Password (defaults to $VENDOR_PASSWORD)")
	if _, err := parseArgs(fs, args); err != nil {
		return errUsage
	}
	if *password == "" {
		*password = os.Getenv("VENDOR_PASSWORD")
	}

	if a.session.Snapshot().IsAuthenticated {
		a.out.Warning("already logged in; run vendorctl logout first")
		return nil
	}
	resp, err := a.session.Login(ctx, *phone, *password)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return apperrors.Server(resp.StatusCode, resp.Message, nil)
	}
	a.out.Session(a.session.Snapshot())
	return nil
}

func (a *app) stores() error {
	s := a.session.Snapshot()
	if !s.IsAuthenticated {
		return apperrors.ErrNotAuthenticated
	}
	if len(s.User.Stores) == 0 {
		a.out.Warning("no stores on this account")
		return nil
	}
	a.out.Stores(s.User.Stores, s.ActiveStoreID)
	return nil
}

func (a *app) switchStore(ctx context.Context, args []string) error {
	positional, err := parseArgs(newFlagSet("switch"), args)
	if err != nil || len(positional) != 1 {
		return errUsage
	}
	store, err := a.session.SwitchSelectedStore(ctx, storeswitch.ByID(positional[0]))
	if err != nil {
		return err
	}
	a.out.Success("active store is now " + storeLabel(store))
	return nil
}

func (a *app) otp(ctx context.Context, args []string) error {
	fs := newFlagSet("otp")
	phone := fs.String("phone", "", "Phone number")
	code := fs.String("otp", "", "OTP code")
	positional, err := parseArgs(fs, args)
	if err != nil || len(positional) != 1 || *phone == "" {
		return errUsage
	}

	var resp *httputil.Response
	switch positional[0] {
	case "send":
		resp, err = a.session.SendResetOTP(ctx, *phone)
	case "verify":
		if *code == "" {
			return errUsage
		}
		resp, err = a.session.VerifyResetOTP(ctx, *phone, *code)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	return a.reply(resp)
}

func (a *app) resetPassword(ctx context.Context, args []string) error {
	fs := newFlagSet("reset-password")
	phone := fs.String("phone", "", "Phone number")
	code := fs.String("otp", "", "Verified OTP code")
	newPassword := fs.String("new-password", "", "New password")
	if _, err := parseArgs(fs, args); err != nil || *phone == "" || *code == "" || *newPassword == "" {
		return errUsage
	}
	resp, err := a.session.ResetPassword(ctx, *phone, *code, *newPassword)
	if err != nil {
		return err
	}
	return a.reply(resp)
}

func (a *app) orders(ctx context.Context, args []string) error {
	fs := newFlagSet("orders")
	storeID := fs.String("store", "", "Store id (defaults to the active store)")
	if _, err := parseArgs(fs, args); err != nil {
		return errUsage
	}
	if !a.session.Snapshot().IsAuthenticated {
		return apperrors.ErrNotAuthenticated
	}

	orders, err := a.api.ListOrders(ctx, *storeID)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	if len(orders) == 0 {
		a.out.Info("no orders")
		return nil
	}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		number := o.OrderNumber
		if number == "" {
			number = o.ID
		}
		rows = append(rows, []string{number, o.Status, strconv.FormatFloat(o.TotalAmount, 'f', 2, 64), o.CustomerName})
	}
	a.out.Table([]string{"ORDER", "STATUS", "TOTAL", "CUSTOMER"}, rows)
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := newFlagSet("products")
	name := fs.String("name", "", "Product name")
	price := fs.Float64("price", 0, "Product price")
	storeID := fs.String("store", "", "Store id (defaults to the active store)")
	positional, err := parseArgs(fs, args)
	if err != nil || len(positional) == 0 {
		return errUsage
	}
	if !a.session.Snapshot().IsAuthenticated {
		return apperrors.ErrNotAuthenticated
	}

	switch positional[0] {
	case "create":
		if *name == "" {
			return errUsage
		}
		created, err := a.api.CreateProduct(ctx, api.Product{StoreID: *storeID, Name: *name, Price: *price, InStock: true})
		if err != nil {
			return a.handleAPIError(ctx, err)
		}
		a.out.Success(fmt.Sprintf("created product %s (%s)", created.Name, created.ID))
	case "delete":
		if len(positional) != 2 {
			return errUsage
		}
		if err := a.api.DeleteProduct(ctx, positional[1]); err != nil {
			return a.handleAPIError(ctx, err)
		}
		a.out.Success("deleted product " + positional[1])
	default:
		return errUsage
	}
	return nil
}

// handleAPIError logs the session out when the backend reports the token as
// expired.
func (a *app) handleAPIError(ctx context.Context, err error) error {
	if apperrors.IsUnauthorized(err) {
		a.session.Logout(ctx)
		a.out.Warning("session expired; log in again")
	}
	return err
}

// reply prints a passthrough response by its server message.
func (a *app) reply(resp *httputil.Response) error {
	msg := resp.Message()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if !resp.OK() {
		return apperrors.Server(resp.StatusCode, msg, resp.Body)
	}
	a.out.Success(msg)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs parses flags wherever they appear among positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// storeLabel formats a store for messages.
func storeLabel(s domain.Store) string {
	if s.IsBranch() {
		return fmt.Sprintf("%s (%s, branch of %s)", s.Name, s.ID, s.ParentStoreID)
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.ID)
}
