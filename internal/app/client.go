package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/kzeller/plcsim/internal/controller"
	"github.com/kzeller/plcsim/internal/errors"
	"github.com/kzeller/plcsim/internal/logging"
)

type ClientOptions struct {
	Addr     string
	Timeout  time.Duration
	LogLevel string
}

func newClient(opts ClientOptions) (*controller.Client, *logging.Logger, error) {
	logger, err := logging.NewLogger(parseLogLevel(opts.LogLevel), "")
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	client, err := controller.Dial(opts.Addr, logger)
	if err != nil {
		return nil, nil, errors.WrapNetworkError(err, opts.Addr)
	}
	return client, logger, nil
}

func RunClientRead(opts ClientOptions, names []string) error {
	client, _, err := newClient(opts)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	values, err := client.Read(ctx, names)
	if err != nil {
		return errors.WrapNetworkError(err, opts.Addr)
	}

	sorted := make([]string, 0, len(values))
	for name := range values {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		data, _ := json.Marshal(values[name])
		fmt.Fprintf(os.Stdout, "%s = %s\n", name, data)
	}
	for _, name := range names {
		if _, ok := values[name]; !ok {
			fmt.Fprintf(os.Stdout, "%s is not set\n", name)
		}
	}
	return nil
}

func RunClientWrite(opts ClientOptions, assignments []string) error {
	writes, err := ParseAssignments(assignments)
	if err != nil {
		return err
	}

	client, _, err := newClient(opts)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	if err := client.Write(ctx, writes); err != nil {
		return errors.WrapNetworkError(err, opts.Addr)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d signals\n", len(writes))
	return nil
}

// ParseAssignments turns name=value arguments into a write batch. Values
// parse as JSON where possible, so true, 3, and 1.5 keep their types, and
// fall back to plain strings otherwise.
func ParseAssignments(assignments []string) (map[string]any, error) {
	writes := make(map[string]any, len(assignments))
	for _, assignment := range assignments {
		name, raw, found := strings.Cut(assignment, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected name=value", assignment)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		writes[name] = value
	}
	return writes, nil
}
