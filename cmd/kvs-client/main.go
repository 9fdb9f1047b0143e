// Command kvs-client is the interactive client for the key-value
// store's TCP wire protocol.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ignitekv/ignite/internal/client"
	"github.com/ignitekv/ignite/pkg/options"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("kvs-client", flag.ExitOnError)
	addr := fs.String("addr", options.DefaultAddr, "IP:PORT of the server")

	if len(args) == 0 {
		return errors.New("usage: kvs-client <set|get|rm> [--addr IP:PORT] KEY [VALUE]")
	}

	command := args[0]
	rest := args[1:]
	if err := fs.Parse(rest); err != nil {
		return err
	}
	rest = fs.Args()

	if err := validateAddr(*addr); err != nil {
		return err
	}

	cli, err := client.Connect(*addr)
	if err != nil {
		return err
	}
	defer cli.Close()

	switch command {
	case "set":
		if len(rest) != 2 {
			return errors.New("usage: kvs-client set <KEY> <VALUE>")
		}
		return cli.Set(rest[0], rest[1])

	case "get":
		if len(rest) != 1 {
			return errors.New("usage: kvs-client get <KEY>")
		}
		value, found, err := cli.Get(rest[0])
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("Key not found")
			return nil
		}
		fmt.Println(value)
		return nil

	case "rm", "remove":
		if len(rest) != 1 {
			return errors.New("usage: kvs-client rm <KEY>")
		}
		if err := cli.Remove(rest[0]); err != nil {
			if errors.Is(err, client.ErrKeyNotFound) {
				fmt.Println("Key not found")
				os.Exit(1)
			}
			return err
		}
		return nil

	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func validateAddr(addr string) error {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid address: %s", addr)
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s", parts[1])
	}
	return nil
}
