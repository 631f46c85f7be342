package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

var (
	errNoInput      = errors.New("no input file given")
	errInvalidField = errors.New("invalid field value")
)

func runCheck(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errNoInput
	}

	var err error
	for _, name := range cmd.Args().Slice() {
		raw, rerr := os.ReadFile(name)
		if rerr != nil {
			err = multierr.Append(err, rerr)
			continue
		}
		if cerr := checkDocument(string(raw)); cerr != nil {
			for _, e := range multierr.Errors(cerr) {
				err = multierr.Append(err, fmt.Errorf("%s: %w", name, e))
			}
			continue
		}
		zap.L().Info("File is valid", zap.String("file", name))
	}
	return err
}

// checkDocument returns every rejected key and invalid field of raw.
func checkDocument(raw string) error {
	doc, err := vcard.Load(raw)
	if err != nil {
		return err
	}
	return multierr.Append(doc.Rejected(), invalidFields(doc))
}

// invalidFields returns one error per field value failing validation.
func invalidFields(doc *vcard.Collection) error {
	var err error
	for _, e := range doc.Entities {
		for _, p := range e.Properties.Pairs() {
			if !vcard.Validate(p.Key, p.Value) {
				err = multierr.Append(err, fmt.Errorf("entity %d: %w: %s:%s", e.Index, errInvalidField, p.Key, p.Value))
			}
		}
	}
	return err
}

func runConvert(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errNoInput
	}
	if cmd.Args().Len() > 1 {
		zap.L().Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	name := cmd.Args().Get(0)

	version, err := vcard.ParseVersion(cmd.String("to"))
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	out, err := convertDocument(string(raw), version, cmd.Bool("force"))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	dst := cmd.String("output")
	if dst == "" {
		dst = vcard.Filename(version)
	}
	if dst == "-" {
		_, err = io.WriteString(cmd.Root().Writer, out)
		return err
	}
	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		return err
	}
	zap.L().Info("Converted", zap.String("source", name), zap.String("destination", dst), zap.Stringer("version", version))
	return nil
}

// convertDocument exports raw for version. Rejected keys are dropped with a
// warning. Unless force is set, documents with invalid fields are refused.
func convertDocument(raw string, version vcard.Version, force bool) (string, error) {
	doc, err := vcard.Load(raw)
	if err != nil {
		return "", err
	}
	for _, ke := range multierr.Errors(doc.Rejected()) {
		zap.L().Warn("Key dropped", zap.Error(ke))
	}
	if !force {
		if err := invalidFields(doc); err != nil {
			return "", fmt.Errorf("document has invalid fields, use --force to export anyway: %w", err)
		}
	}
	return vcard.ExportAll(doc, version)
}

func runDump(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errNoInput
	}
	raw, err := os.ReadFile(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	return dumpDocument(cmd.Root().Writer, string(raw), cmd.String("format"))
}

// dumpDocument writes the parsed contacts of raw to w as JSON or YAML.
func dumpDocument(w io.Writer, raw, format string) error {
	doc, err := vcard.Load(raw)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
