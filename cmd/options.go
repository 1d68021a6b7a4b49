package main

import (
	"fmt"
	"strconv"
	"strings"
)

// options holds the parsed flags of every subcommand. Each command accepts
// only its own subset, see the flag groups below.
type options struct {
	configPath string
	url        string
	jsonOut    bool

	level     string
	travelers int
	lodging   string
	budget    int64
	spending  string

	port  int
	debug bool

	positional []string
}

type flagGroup int

const (
	commonFlags flagGroup = 1 << iota
	remoteFlags
	quoteFlags
	serveFlags
)

// parseOptions parses args the way every subcommand does: flags may appear
// anywhere, "--" ends flag parsing.
func parseOptions(args []string, groups flagGroup) (*options, error) {
	o := &options{}

	value := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", args[i])
		}
		return args[i+1], nil
	}
	allow := func(g flagGroup, name string) error {
		if groups&g == 0 {
			return fmt.Errorf("unknown option: %s", name)
		}
		return nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var (
			group flagGroup
			dest  *string
			num   *int
			num64 *int64
			flag  *bool
		)
		switch arg {
		case "-c", "--config":
			group, dest = commonFlags, &o.configPath
		case "--json":
			group, flag = commonFlags, &o.jsonOut
		case "-u", "--url":
			group, dest = remoteFlags, &o.url
		case "-l", "--level":
			group, dest = quoteFlags, &o.level
		case "-t", "--travelers":
			group, num = quoteFlags, &o.travelers
		case "-a", "--lodging":
			group, dest = quoteFlags, &o.lodging
		case "-b", "--budget":
			group, num64 = quoteFlags, &o.budget
		case "-s", "--spending":
			group, dest = quoteFlags, &o.spending
		case "-p", "--port":
			group, num = serveFlags, &o.port
		case "-d", "--debug":
			group, flag = serveFlags, &o.debug
		case "--":
			o.positional = append(o.positional, args[i+1:]...)
			return o, nil
		default:
			if strings.HasPrefix(arg, "-") && !isNumber(arg) {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			o.positional = append(o.positional, arg)
			continue
		}

		if err := allow(group, arg); err != nil {
			return nil, err
		}
		if flag != nil {
			*flag = true
			continue
		}

		v, err := value(i)
		if err != nil {
			return nil, err
		}
		i++
		switch {
		case dest != nil:
			*dest = v
		case num != nil:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%s must be a whole number, got %q", arg, v)
			}
			*num = n
		case num64 != nil:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be a whole number, got %q", arg, v)
			}
			*num64 = n
		}
	}
	return o, nil
}

// isNumber lets negative positionals through so the service can reject
// them with its own message.
func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// parseDays reads a day count positional.
func parseDays(s string) (int, error) {
	days, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("days must be a whole number, got %q", s)
	}
	return days, nil
}
