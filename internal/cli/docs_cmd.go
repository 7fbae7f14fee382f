// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs_cmd.go - Document commands: upload files and add raw text.
//
// Examples:
//
//	askmydocs upload handbook.pdf notes.md
//	askmydocs add "The office closes at 6pm on Fridays"
//	askmydocs add --file meeting.txt
//	cat notes.txt | askmydocs add -
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/askmydocs/askmydocs-tui/internal/auth"
)

// maxTextBytes bounds text read from stdin or --file for the add command.
const maxTextBytes = 8 << 20

// HandleUpload uploads each file argument in turn. Every file is attempted;
// the first failure is returned after the rest have been tried.
func HandleUpload(env *Env, args Args) error {
	p := NewArgParser(args.Rest)
	paths := p.PositionalFrom(0)
	if len(paths) == 0 {
		return ErrMissingArgument("file", "askmydocs upload handbook.pdf notes.md")
	}

	var (
		data     UploadData
		firstErr error
	)
	for _, path := range paths {
		entry := UploadFileData{Path: path}
		up, err := env.Ctrl.UploadFile(context.Background(), path)
		if err != nil {
			entry.Error = auth.Message(err)
			if firstErr == nil {
				firstErr = err
			}
			if !args.JSON {
				fmt.Fprintf(env.Err, "%s %s: %s\n", ErrorStyle.Render("[FAIL]"), path, entry.Error)
			}
		} else {
			entry.Filename = up.Filename
			entry.Message = up.Message
			env.info(args, "%s %s\n", SuccessStyle.Render("[OK]"), up.Message)
		}
		data.Files = append(data.Files, entry)
	}

	if args.JSON {
		if err := NewJSONResponse("upload", data).Write(env.Out); err != nil {
			return err
		}
	}
	return firstErr
}

// HandleAdd submits text for indexing. The text comes from the positional
// arguments, from --file, or from stdin when the only argument is "-".
func HandleAdd(env *Env, args Args) error {
	p := NewArgParser(args.Rest)

	var text string
	switch {
	case p.Flag("file", "f") != "":
		path := p.Flag("file", "f")
		b, err := readLimited(path, nil)
		if err != nil {
			return NewCommandError("add", "read", path, err)
		}
		text = b
	case p.PositionalCount() == 1 && p.Positional(0) == "-":
		b, err := readLimited("-", env.In)
		if err != nil {
			return NewCommandError("add", "read", "stdin", err)
		}
		text = b
	default:
		text = p.Joined(0)
	}

	msg, err := env.Ctrl.AddText(context.Background(), text)
	if err != nil {
		return err
	}
	return env.result(args, "add", MessageData{Message: msg}, func(w io.Writer) {
		if !args.Quiet {
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK]"), msg)
		}
	})
}

func readLimited(path string, in io.Reader) (string, error) {
	r := in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(io.LimitReader(r, maxTextBytes))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}
