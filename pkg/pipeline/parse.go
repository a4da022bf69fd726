package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/matzehuels/boxlayout/pkg/dsl"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/observability"
)

// Parse reads opts.Source into a document.
func Parse(ctx context.Context, opts Options) (*dsl.Document, error) {
	name := opts.Filename
	if name == "" {
		name = DefaultFilename
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, name)
	start := time.Now()

	doc, err := dsl.ParseString(name, opts.Source)

	surfaces := 0
	if doc != nil {
		surfaces = len(doc.Surfaces())
	}
	hooks.OnParseComplete(ctx, name, surfaces, time.Since(start), err)
	return doc, err
}

// ReadSource reads a description from path, or from stdin when path is "-".
func ReadSource(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", path)
	}
	return string(data), nil
}
