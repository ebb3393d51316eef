// Command salectl drives a running sale server: role management, sale
// configuration, queries and treasury withdrawal.
package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainsafe/primary-sale-minter/pkg/auth"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
	saleservice "github.com/chainsafe/primary-sale-minter/pkg/sale/service"
)

const keyEnv = "SALECTL_PRIVATE_KEY"

// command is one salectl subcommand.
type command struct {
	name  string
	usage string
	run   func(ctx context.Context, c *client, args []string, out io.Writer) error
}

var commands = []command{
	{"grant-seller", "grant the seller role: -seller <address>", grantSeller},
	{"check-seller", "check the seller role: -seller <address>", checkSeller},
	{"revoke-seller", "revoke the seller role: -seller <address>", revokeSeller},
	{"config-sale", "install sale terms: -start -end (seconds from now) -supply -price -limit", configSale},
	{"get-sale", "show the active sale terms and progress", getSale},
	{"get-sale-by-account", "show the sale standing of -address", getSaleByAccount},
	{"blacklist", "set the blacklist flag: -address <address> -flag=true|false", setBlacklist},
	{"mint", "buy one unit: -token-id <id> -payment <amount>", mint},
	{"balance", "show the treasury balance", balance},
	{"withdraw", "withdraw the treasury to the caller", withdraw},
	{"events", "list notifications: -after <seq> -limit <n>", events},
	{"token", "exchange a signed request for a bearer token", token},
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "salectl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("salectl", flag.ContinueOnError)
	serverURL := fs.String("url", "http://localhost:8080", "sale server base URL")
	keyHex := fs.String("key", "", "hex private key used to sign requests (default $"+keyEnv+")")
	timeout := fs.Duration("timeout", 2*time.Minute, "request timeout")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		usage(fs)
		return errors.New("missing command")
	}

	name := fs.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		usage(fs)
		return fmt.Errorf("unknown command %q", name)
	}

	if *keyHex == "" {
		*keyHex = os.Getenv(keyEnv)
	}
	key, err := loadKey(*keyHex)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	return cmd.run(ctx, newClient(*serverURL, key, *timeout), fs.Args()[1:], out)
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: salectl [flags] <command> [command flags]\n\nFlags:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-20s %s\n", c.name, c.usage)
	}
}

func loadKey(s string) (*ecdsa.PrivateKey, error) {
	if s == "" {
		return nil, nil
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func roleFlags(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	seller := fs.String("seller", "", "seller account address")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *seller == "" {
		return "", fmt.Errorf("%s: -seller is required", name)
	}
	return *seller, nil
}

func setSeller(ctx context.Context, c *client, args []string, out io.Writer, name, path string) error {
	seller, err := roleFlags(name, args)
	if err != nil {
		return err
	}
	req := &saleservice.RoleRequest{Role: sale.Seller.String(), Account: seller}
	var resp saleservice.RoleResponse
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func grantSeller(ctx context.Context, c *client, args []string, out io.Writer) error {
	return setSeller(ctx, c, args, out, "grant-seller", "/roles/grant")
}

func revokeSeller(ctx context.Context, c *client, args []string, out io.Writer) error {
	return setSeller(ctx, c, args, out, "revoke-seller", "/roles/revoke")
}

func checkSeller(ctx context.Context, c *client, args []string, out io.Writer) error {
	seller, err := roleFlags("check-seller", args)
	if err != nil {
		return err
	}
	var resp saleservice.RoleResponse
	path := "/roles/" + url.PathEscape(sale.Seller.String()) + "/" + url.PathEscape(seller)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func configSale(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config-sale", flag.ContinueOnError)
	start := fs.Int64("start", 0, "sale start, in seconds from now")
	end := fs.Int64("end", 0, "sale end, in seconds from now")
	supply := fs.Uint64("supply", 0, "total units available")
	price := fs.String("price", "0.200", "unit price in native units")
	limit := fs.Uint64("limit", 10, "units per account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := c.now().UTC()
	req := &saleservice.ConfigRequest{
		StartTime:     now.Add(time.Duration(*start) * time.Second),
		EndTime:       now.Add(time.Duration(*end) * time.Second),
		SupplyCap:     *supply,
		UnitPrice:     *price,
		PerAccountCap: *limit,
	}
	var resp saleservice.ConfigResponse
	if err := c.do(ctx, http.MethodPost, "/sale/config", nil, req, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func getSale(ctx context.Context, c *client, _ []string, out io.Writer) error {
	var cfg saleservice.ConfigResponse
	if err := c.do(ctx, http.MethodGet, "/sale/config", nil, nil, &cfg); err != nil {
		return err
	}
	var counts saleservice.CountsResponse
	if err := c.do(ctx, http.MethodGet, "/sale/counts", nil, nil, &counts); err != nil {
		return err
	}
	return printJSON(out, map[string]any{
		"config": &cfg,
		"counts": &counts,
	})
}

func getSaleByAccount(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("get-sale-by-account", flag.ContinueOnError)
	address := fs.String("address", "", "account address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *address == "" {
		return errors.New("get-sale-by-account: -address is required")
	}
	var resp saleservice.AccountResponse
	if err := c.do(ctx, http.MethodGet, "/sale/accounts/"+url.PathEscape(*address), nil, nil, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func setBlacklist(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("blacklist", flag.ContinueOnError)
	address := fs.String("address", "", "account address")
	value := fs.Bool("flag", true, "blacklisted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *address == "" {
		return errors.New("blacklist: -address is required")
	}
	req := &saleservice.BlacklistRequest{Account: *address, Blacklisted: *value}
	var resp sale.Event
	if err := c.do(ctx, http.MethodPost, "/blacklist", nil, req, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func mint(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	tokenID := fs.String("token-id", "", "unit identifier")
	payment := fs.String("payment", "", "payment in native units")
	paymentTx := fs.String("payment-tx", "", "hash of the transaction that paid for the unit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tokenID == "" || *payment == "" {
		return errors.New("mint: -token-id and -payment are required")
	}
	req := &saleservice.MintRequest{TokenID: *tokenID, Payment: *payment, PaymentTx: *paymentTx}
	var resp saleservice.MintResponse
	if err := c.do(ctx, http.MethodPost, "/sale/mint", nil, req, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func balance(ctx context.Context, c *client, _ []string, out io.Writer) error {
	var resp saleservice.TreasuryResponse
	if err := c.do(ctx, http.MethodGet, "/treasury", nil, nil, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func withdraw(ctx context.Context, c *client, _ []string, out io.Writer) error {
	var resp saleservice.WithdrawResponse
	if err := c.do(ctx, http.MethodPost, "/treasury/withdraw", nil, nil, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func events(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	after := fs.Uint64("after", 0, "return events after this sequence number")
	limit := fs.Int("limit", 100, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q := url.Values{}
	q.Set("after", strconv.FormatUint(*after, 10))
	q.Set("limit", strconv.Itoa(*limit))

	var resp saleservice.EventsResponse
	if err := c.do(ctx, http.MethodGet, "/events", q, nil, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}

func token(ctx context.Context, c *client, _ []string, out io.Writer) error {
	var resp auth.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token", nil, nil, &resp); err != nil {
		return err
	}
	return printJSON(out, &resp)
}
