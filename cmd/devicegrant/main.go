package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/waabox/devicegrant"
	"github.com/waabox/devicegrant/internal/config"
	"github.com/waabox/devicegrant/prompt"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	versionFlag := flag.Bool("version", false, "print version and exit")
	plainFlag := flag.Bool("plain", false, "print instructions as plain text instead of the interactive prompt")
	configPath := flag.String("config", config.DefaultConfigPath(), "path to the config file")
	flag.Parse()
	if *versionFlag {
		fmt.Println("devicegrant", version)
		os.Exit(0)
	}

	// a .env in the working directory may hold DEVICEGRANT_* overrides
	godotenv.Load()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	flowCfg, err := cfg.FlowConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error in config: %v\n", err)
		os.Exit(1)
	}
	flow, err := devicegrant.New(flowCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error in config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var token devicegrant.Token
	if *plainFlag {
		token, err = flow.Authenticate(ctx, prompt.WriterPresenter{W: os.Stderr})
	} else {
		token, err = prompt.Run(ctx, flow)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "authentication failed: %v\n", err)
		os.Exit(1)
	}

	cfg.Token = token.AccessToken
	if saveErr := config.Save(*configPath, cfg); saveErr != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save token to config: %v\n", saveErr)
	} else {
		fmt.Fprintf(os.Stderr, "Authenticated. Token saved to %s\n", *configPath)
	}

	// the token also goes to stdout so it can be piped
	fmt.Println(token.AccessToken)
}
