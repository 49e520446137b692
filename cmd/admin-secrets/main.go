// Package main generates the admin login settings for votegate: the bcrypt
// password hash and the token signing secret, and can issue a token for
// trying the admin API locally.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"votegate/internal/admin/auth"
	"votegate/pkg/secrets"
)

type output struct {
	Env   map[string]string `json:"env,omitempty"`
	Token string            `json:"token,omitempty"`
	Usage string            `json:"usage,omitempty"`
}

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	initPassword := initCmd.String("password", "", "Admin password. Read from stdin if empty.")
	initJSON := initCmd.Bool("json", false, "Output as JSON")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenPassword := tokenCmd.String("password", "", "Admin password. Read from stdin if empty.")
	tokenTTL := tokenCmd.Duration("ttl", auth.DefaultTokenTTL, "Token time-to-live")
	tokenJSON := tokenCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		_ = initCmd.Parse(os.Args[2:])
		runInit(readPassword(*initPassword), *initJSON)
	case "token":
		_ = tokenCmd.Parse(os.Args[2:])
		runToken(readPassword(*tokenPassword), *tokenTTL, *tokenJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`admin-secrets - Generate votegate admin login settings

Usage:
  admin-secrets <command> [flags]

Commands:
  init     Print ADMIN_PASSWORD_HASH and a fresh ADMIN_JWT_SECRET for .env
  token    Log in with ADMIN_PASSWORD_HASH / ADMIN_JWT_SECRET from the
           environment and print a bearer token

Examples:
  admin-secrets init -password 'correct horse' >> .env
  ADMIN_PASSWORD_HASH=... ADMIN_JWT_SECRET=... admin-secrets token -json`)
}

func readPassword(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	fmt.Fprint(os.Stderr, "Admin password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fatal("read password", err)
	}
	return strings.TrimRight(line, "\r\n")
}

func runInit(password string, jsonOutput bool) {
	hash, err := secrets.Hash(password)
	if err != nil {
		fatal("hash password", err)
	}
	secret, err := secrets.Generate()
	if err != nil {
		fatal("generate secret", err)
	}

	if jsonOutput {
		printJSON(output{Env: map[string]string{
			"ADMIN_PASSWORD_HASH": hash,
			"ADMIN_JWT_SECRET":    secret,
		}})
		return
	}
	// Single quotes keep the bcrypt "$" segments literal in shells and .env files.
	fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", hash)
	fmt.Printf("ADMIN_JWT_SECRET='%s'\n", secret)
}

func runToken(password string, ttl time.Duration, jsonOutput bool) {
	a, err := auth.New(os.Getenv("ADMIN_PASSWORD_HASH"), os.Getenv("ADMIN_JWT_SECRET"), ttl)
	if err != nil {
		fatal("configure authenticator", err)
	}
	token, err := a.Login(context.Background(), password)
	if err != nil {
		fatal("login", err)
	}

	if jsonOutput {
		printJSON(output{Token: token.AccessToken, Usage: "Authorization: Bearer <token>"})
		return
	}
	fmt.Println("Admin Token (JWT)")
	fmt.Println("=================")
	fmt.Printf("Expires At: %s\n", token.ExpiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Println(token.AccessToken)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode output", err)
	}
}

func fatal(step string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", step, err)
	os.Exit(1)
}
