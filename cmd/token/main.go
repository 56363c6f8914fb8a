// Command token prints a development access token for a seller, signed with
// the server's secret key.
//
//	token -seller s-1 [-c server.json] [-s secret] [-ttl 60m]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/server/auth"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
)

func main() {
	var cfg config.Config
	cfg.LoadDefaults()

	fs := flag.NewFlagSet("token", flag.ExitOnError)
	seller := fs.String("seller", "", "seller id to put into the token")
	secret := fs.String("s", cfg.SecretKey, "secret key")
	ttl := fs.Duration("ttl", cfg.AccessTokenValidityDuration, "token validity")
	_ = fs.String("c", "", "server config file (reads secret_key)")
	_ = fs.String("config", "", "server config file (reads secret_key)")
	_ = fs.Parse(os.Args[1:])

	if *seller == "" {
		fmt.Fprintln(os.Stderr, "token: -seller is required")
		os.Exit(2)
	}

	key := *secret
	if !flagSet(fs, "s") {
		if fromFile := config.LoadConfig(); fromFile != nil {
			key = fromFile.SecretKey
		}
	}

	tok, err := auth.GenerateToken(*seller, []byte(key), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
