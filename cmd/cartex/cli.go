package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/cartex"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Timeout  time.Duration
	Cart     cartex.CartService
	Capturer cartex.Capturer
	Handler  http.Handler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" type:"existingfile" env:"CARTEX_CONFIG" help:"YAML configuration file"`
	Render  bool   `short:"r" help:"Render pages in headless Chrome before extracting"`
	Verbose bool   `short:"v" help:"Log strategy and fetch details"`

	Extract ExtractCmd `cmd:"" help:"Extract title, price and image from a product page"`
	Add     AddCmd     `cmd:"" help:"Capture product pages and save them to the cart"`
	List    ListCmd    `cmd:"" help:"List cart items and subtotals"`
	Remove  RemoveCmd  `cmd:"" help:"Remove one item from the cart"`
	Clear   ClearCmd   `cmd:"" help:"Remove every item from the cart"`
	Serve   ServeCmd   `cmd:"" help:"Serve the capture API over HTTP"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL     string        `arg:"" help:"Product page URL"`
	Timeout time.Duration `short:"t" help:"Capture timeout (default from config, 5s)"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	URLs    []string      `arg:"" name:"url" help:"Product page URLs"`
	Timeout time.Duration `short:"t" help:"Capture timeout per page (default from config, 5s)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	JSON bool `help:"Print items as JSON"`
}

// RemoveCmd is the "remove" subcommand.
type RemoveCmd struct {
	ID string `arg:"" help:"Cart item ID"`
}

// ClearCmd is the "clear" subcommand.
type ClearCmd struct {
	Force bool `help:"Confirm removal"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" help:"Listen address"`
}
