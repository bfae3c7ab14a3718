// Command catalogctl queries a running catalog service and mints admin
// tokens for its write routes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/viper"

	"Storefront/internal/catalog"
)

const usage = `usage: catalogctl [-url URL] <command> [args]

commands:
  get <id>             show one product
  list                 list products (-min, -max, -all, -seller, -category)
  search <term>        type-ahead name search
  token <subject>      print an admin token signed with ADMIN_JWT_SECRET
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "catalogctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	v := viper.New()
	v.SetDefault("CATALOG_URL", "http://localhost:8082")
	v.AutomaticEnv()

	fs := flag.NewFlagSet("catalogctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	baseURL := fs.String("url", v.GetString("CATALOG_URL"), "catalog base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New(usage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := catalog.NewClient(*baseURL)
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "get":
		if len(rest) != 1 {
			return errors.New("get: want exactly one id")
		}
		p, err := c.GetProduct(ctx, rest[0])
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("product %s not found", rest[0])
		}
		if err != nil {
			return err
		}
		return printJSON(out, p)

	case "list":
		crit, err := parseListFlags(rest)
		if err != nil {
			return err
		}
		products, err := c.List(ctx, crit)
		if err != nil {
			return err
		}
		return printJSON(out, products)

	case "search":
		if len(rest) != 1 {
			return errors.New("search: want exactly one term")
		}
		products, err := c.Search(ctx, rest[0], 0)
		if err != nil {
			return err
		}
		return printJSON(out, products)

	case "token":
		if len(rest) != 1 {
			return errors.New("token: want exactly one subject")
		}
		secret := v.GetString("ADMIN_JWT_SECRET")
		if len(secret) < 32 {
			return errors.New("ADMIN_JWT_SECRET must be set and at least 32 chars")
		}
		tok, err := catalog.NewTokenMaker(secret).New(rest[0], catalog.RoleAdmin, time.Hour)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, tok)
		return err

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func parseListFlags(args []string) (catalog.Criteria, error) {
	crit := catalog.DefaultCriteria()

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Float64Var(&crit.MinPrice, "min", crit.MinPrice, "minimum price")
	fs.Float64Var(&crit.MaxPrice, "max", crit.MaxPrice, "maximum price")
	all := fs.Bool("all", false, "include out-of-stock products")
	fs.StringVar(&crit.Seller, "seller", "", "seller substring")
	fs.StringVar(&crit.Category, "category", "", "exact category")

	if err := fs.Parse(args); err != nil {
		return catalog.Criteria{}, err
	}
	crit.InStock = !*all
	return crit, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
